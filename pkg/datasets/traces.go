// Package datasets loads recorded token traces for offline evaluation.
// Nothing here is on the live processing path; the engine itself never
// touches the filesystem.
package datasets

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/q0rtex/qortex-go/pkg/errors"
)

// TraceExample is a single recorded input with the kind it was
// processed as.
type TraceExample struct {
	Input string `json:"input"`
	Kind  string `json:"kind"`
}

// LoadTraces reads a trace file in Parquet format. The file must carry
// string columns named "input" and "kind".
func LoadTraces(ctx context.Context, path string) ([]TraceExample, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.ResourceNotFound, "failed to open trace file"),
			errors.Fields{"path": path})
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read trace file as arrow")
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read trace schema")
	}

	inputIndices := schema.FieldIndices("input")
	kindIndices := schema.FieldIndices("kind")
	if len(inputIndices) == 0 || len(kindIndices) == 0 {
		return nil, errors.New(errors.InvalidInput, "trace file is missing the input or kind column")
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read trace table")
	}
	defer table.Release()

	inputCol := table.Column(inputIndices[0]).Data()
	kindCol := table.Column(kindIndices[0]).Data()

	examples := make([]TraceExample, 0, table.NumRows())
	for c := 0; c < len(inputCol.Chunks()); c++ {
		inputs, ok := inputCol.Chunk(c).(*array.String)
		if !ok {
			return nil, errors.New(errors.InvalidInput, "input column is not a string column")
		}
		kinds, ok := kindCol.Chunk(c).(*array.String)
		if !ok {
			return nil, errors.New(errors.InvalidInput, "kind column is not a string column")
		}
		for i := 0; i < inputs.Len(); i++ {
			examples = append(examples, TraceExample{
				Input: inputs.Value(i),
				Kind:  kinds.Value(i),
			})
		}
	}
	return examples, nil
}
