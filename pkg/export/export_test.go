package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Fiscalizações",
		Headers: []string{"id", "title", "status"},
		Rows: []map[string]string{
			{"id": "1", "title": "Ar-condicionado quebrado", "status": "Em Processo"},
			{"id": "2", "title": "Vazamento, banheiro", "status": "Concluída"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "id,title,status\n1,Ar-condicionado quebrado,Em Processo\n2,\"Vazamento, banheiro\",Concluída\n", string(out))
}

func TestCSVExporterCustomSeparator(t *testing.T) {
	out, err := (&CSVExporter{Comma: ';'}).Render(Dataset{Headers: []string{"a", "b"}, Rows: []map[string]string{{"a": "1"}}})
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := &PDFExporter{Widths: map[string]float64{"title": 3}}
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
}
