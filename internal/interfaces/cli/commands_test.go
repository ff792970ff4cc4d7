package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/jwt"
)

type fakeImporter struct {
	rows int
	err  error
}

func (f *fakeImporter) Run(ctx context.Context, source importer.RowSource) (importer.Report, error) {
	r, err := source.Open(ctx)
	if err != nil {
		return importer.Report{}, err
	}
	defer r.Close()
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		f.rows++
	}
	return importer.Report{RunID: "run-1", Batches: 1, Rows: f.rows, StartedAt: time.Now(), FinishedAt: time.Now()}, f.err
}

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	events []published
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte) (*entity.StockEvent, error) {
	f.events = append(f.events, published{topic, payload})
	return &entity.StockEvent{ID: "ev-1", Topic: topic, Status: entity.EventStatusPending}, nil
}

// run ejecuta stockctl con args y devuelve la salida estándar.
func run(t *testing.T, b *Backend, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{Import: config.ImportConfig{Encoding: "utf-8"}}
	closed := false
	b.Close = func() { closed = true }
	root := NewRootCommand(cfg, func(context.Context, *config.Config) (*Backend, error) { return b, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "el backend se cierra al terminar")
	}
	return out.String(), err
}

func TestImport_EmbeddedFile(t *testing.T) {
	imp := &fakeImporter{}
	out, err := run(t, &Backend{Importer: imp}, "import")
	require.NoError(t, err)

	var report dto.ImportReportResponse
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 10, report.Rows)
}

func TestImport_Failure(t *testing.T) {
	_, err := run(t, &Backend{Importer: &fakeImporter{err: errors.New("lote 2: fila inválida")}}, "import")
	assert.ErrorContains(t, err, "lote 2")

	_, err = run(t, &Backend{Importer: &fakeImporter{}}, "import", "--encoding", "utf-16")
	assert.Error(t, err)
}

func TestPublishAdjust(t *testing.T) {
	pub := &fakePublisher{}
	out, err := run(t, &Backend{Publisher: pub}, "publish", "adjust", "--ean", "111", "--quantity", "3", "--direction", "retira_do_estoque")
	require.NoError(t, err)
	assert.Contains(t, out, "ev-1")

	require.Len(t, pub.events, 1)
	assert.Equal(t, entity.TopicStockAdjust, pub.events[0].topic)
	var ev dto.AdjustStockEvent
	require.NoError(t, json.Unmarshal(pub.events[0].payload, &ev))
	assert.Equal(t, int64(111), *ev.EAN)
	assert.Equal(t, int64(3), *ev.Quantity)
	assert.Equal(t, "DEBIT", ev.Direction)
}

func TestPublishAdjust_InvalidFlags(t *testing.T) {
	pub := &fakePublisher{}
	cases := [][]string{
		{"publish", "adjust", "--ean", "0", "--quantity", "3", "--direction", "DEBIT"},
		{"publish", "adjust", "--ean", "1", "--quantity", "-3", "--direction", "DEBIT"},
		{"publish", "adjust", "--ean", "1", "--quantity", "3", "--direction", "SIDEWAYS"},
		{"publish", "adjust", "--ean", "1", "--quantity", "3"},
	}
	for _, args := range cases {
		_, err := run(t, &Backend{Publisher: pub}, args...)
		assert.Error(t, err, "%v", args)
	}
	assert.Empty(t, pub.events)
}

func TestPublishDecrement(t *testing.T) {
	pub := &fakePublisher{}
	_, err := run(t, &Backend{Publisher: pub}, "publish", "decrement", "--ean", "9", "--quantity", "4")
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, entity.TopicStockDecrement, pub.events[0].topic)
	assert.JSONEq(t, `{"ean":9,"quantity":4}`, string(pub.events[0].payload))
}

func TestPublish_WithoutQueue(t *testing.T) {
	_, err := run(t, &Backend{}, "publish", "decrement", "--ean", "9", "--quantity", "4")
	assert.ErrorContains(t, err, "cola de eventos")
}

func TestToken_DoesNotNeedBackend(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s3cr3t", Issuer: "stock-api", Expiration: 5}}
	root := NewRootCommand(cfg, func(context.Context, *config.Config) (*Backend, error) {
		return nil, errors.New("no debería conectarse")
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--subject", "pedidos", "--role", "integracion"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	subject, role, err := jwt.Parse("s3cr3t", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "pedidos", subject)
	assert.Equal(t, "integracion", role)
}

func TestToken_RequiresSecretAndSubject(t *testing.T) {
	root := NewRootCommand(&config.Config{}, nil)
	root.SetArgs([]string{"token", "--subject", "pedidos"})
	assert.Error(t, root.ExecuteContext(context.Background()))

	root = NewRootCommand(&config.Config{JWT: config.JWTConfig{Secret: "x"}}, nil)
	root.SetArgs([]string{"token"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}
