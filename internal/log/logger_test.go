package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLogger_ComponentAndOperationFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentApp,
		Handler:   slog.NewJSONHandler(&buf, nil),
	})

	logger.WithComponent(ComponentLedger).Info("Appended ledger row",
		FieldUsername, "alice",
		FieldOperation, OpAppend,
		FieldTable, "Expenses")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}

	if record[FieldComponent] != ComponentLedger {
		t.Errorf("%s = %v, want %s", FieldComponent, record[FieldComponent], ComponentLedger)
	}
	if record[FieldUsername] != "alice" {
		t.Errorf("%s = %v, want alice", FieldUsername, record[FieldUsername])
	}
	if record[FieldOperation] != OpAppend {
		t.Errorf("%s = %v, want %s", FieldOperation, record[FieldOperation], OpAppend)
	}
	if record[FieldTable] != "Expenses" {
		t.Errorf("%s = %v, want Expenses", FieldTable, record[FieldTable])
	}
}

func TestLogger_WithKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentWorker,
		Handler:   slog.NewJSONHandler(&buf, nil),
	})

	logger.With(FieldBackend, "sqlite").Info("Starting")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	if record[FieldBackend] != "sqlite" {
		t.Errorf("%s = %v, want sqlite", FieldBackend, record[FieldBackend])
	}
	if record[FieldComponent] != ComponentWorker {
		t.Errorf("%s = %v, want %s", FieldComponent, record[FieldComponent], ComponentWorker)
	}
}
