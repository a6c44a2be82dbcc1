package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/Veraticus/docintake/internal/storage"
	"github.com/Veraticus/docintake/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestReadShipmentFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		docs    int
	}{
		{
			name: "valid",
			input: `{
				"shipment": {"id": "SHP-1", "product_type": "meat", "etd": "2024-05-01T00:00:00Z"},
				"documents": [
					{"id": "d1", "document_type": "bill_of_lading", "canonical_data": {"fields": {"container_numbers": ["MSCU1234567"]}}},
					{"id": "d2", "document_type": "commercial_invoice"}
				]
			}`,
			docs: 2,
		},
		{
			name:    "missing shipment id",
			input:   `{"shipment": {"product_type": "meat"}, "documents": []}`,
			wantErr: common.ErrMalformedInput,
		},
		{
			name:    "not json",
			input:   `shipment`,
			wantErr: common.ErrMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf, err := readShipmentFile(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SHP-1", sf.Shipment.ID)
			require.NotNil(t, sf.Shipment.ETD)
			assert.Len(t, sf.Documents, tt.docs)
			assert.Equal(t, model.DocBillOfLading, sf.Documents[0].DocumentType)
		})
	}
}

func TestCollectPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o750))

	single := filepath.Join(t.TempDir(), "single.pdf")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0o600))

	files, err := collectPDFs([]string{dir, single})
	require.NoError(t, err)

	want := []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf"), single}
	assert.ElementsMatch(t, want, files)
	assert.NotContains(t, files, filepath.Join(dir, "notes.txt"))

	_, err = collectPDFs([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"extract", "split", "classify", "ingest", "validate", "report", "rules", "review", "status", "watch", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestValidateCommand_StoresReport(t *testing.T) {
	shipment, docs := testutil.NewShipmentBuilder(t).
		WithID("SHP-CLI").
		WithCompliantMeatDocuments().
		Build()

	data, err := json.Marshal(shipmentFile{Shipment: shipment, Documents: docs})
	require.NoError(t, err)

	dir := t.TempDir()
	input := filepath.Join(dir, "shipment.json")
	require.NoError(t, os.WriteFile(input, data, 0o600))
	dbPath := filepath.Join(dir, "results.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"validate", input, "--db", dbPath, "--json", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var printed model.ValidationReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.True(t, printed.IsValid)

	store, err := storage.NewSQLiteStorage(dbPath, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	stored, err := store.LatestReport(context.Background(), "SHP-CLI")
	require.NoError(t, err)
	assert.Equal(t, printed.Failed, stored.Report.Failed)
	assert.True(t, stored.Report.IsValid)
}

func TestAskOverrideReason(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "declined", input: "n\n", want: ""},
		{name: "accepted", input: "y\nB/L couriered separately\n", want: "B/L couriered separately"},
		{name: "empty reason asked again", input: "yes\n\nvet cert follows\n", want: "vet cert follows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetContext(context.Background())

			got, err := askOverrideReason(cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
