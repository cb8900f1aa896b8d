package reports

import (
	"chunkdash/internal/chunking"
	"chunkdash/pkg/contracts/domain"
)

// Tabulate renders summaries as rows in the definition's column order.
// Dates are DD-MON-RR, month keys are integers and NULL values are nil.
func Tabulate(def *Definition, summaries []chunking.Summary) []domain.Row {
	rows := make([]domain.Row, 0, len(summaries))
	for _, s := range summaries {
		row := make(domain.Row, 0, len(def.Columns))
		for _, col := range def.Columns {
			row = append(row, domain.Cell{Column: col.Name, Value: cellValue(col, s)})
		}
		rows = append(rows, row)
	}
	return rows
}

func cellValue(col Column, s chunking.Summary) interface{} {
	switch col.Source {
	case SourceChunkNo:
		return s.Chunk.Number
	case SourceStartDate:
		return chunking.FormatDay(s.Chunk.Start)
	case SourceEndDate:
		return chunking.FormatDay(s.Chunk.End)
	case SourceMonthKey:
		return int(s.Chunk.EndMonth)
	case SourceSum:
		return s.Sum(col.Field)
	case SourceAverage:
		return s.Average(col.Field)
	case SourcePresentPeriods:
		return s.PresentPeriods
	case SourceDimension:
		if v, ok := s.Dimension(col.Field); ok {
			return v
		}
		return nil
	}
	return nil
}
