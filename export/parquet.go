package export

import (
	"github.com/parquet-go/parquet-go"
)

func writeParquet(path string, rows []Row) error {
	return parquet.WriteFile(path, rows)
}
