package main

import (
	"chat-saga/repositories"
	"fmt"

	"github.com/mama165/sdk-go/database"
)

// RecordMapper renders log records in the debug inspector. Other keys keep
// the default rendering.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	record, err := repositories.DecodeRecord(val)
	if err != nil {
		return row
	}
	row.Type = string(record.Type)
	row.Detail = fmt.Sprintf("#%d %s seq=%d cause=%d %s", record.Position, record.Stream, record.Seq, record.Cause, record.Payload)
	return row
}
