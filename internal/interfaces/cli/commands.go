// Package cli implementa stockctl: importación manual, publicación de eventos de stock y
// emisión de tokens.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/importer"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/product"
	"github.com/jhoicas/stock-api/internal/infrastructure/csvsource"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/jwt"
)

// Importer ejecuta una importación completa.
type Importer interface {
	Run(ctx context.Context, source importer.RowSource) (importer.Report, error)
}

// Publisher encola eventos de stock.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (*entity.StockEvent, error)
}

// Backend dependencias que usan los comandos. Close libera conexiones.
type Backend struct {
	Importer  Importer
	Publisher Publisher
	Close     func()
}

// BackendFactory construye el backend a partir de la configuración.
type BackendFactory func(ctx context.Context, cfg *config.Config) (*Backend, error)

// NewRootCommand arma el árbol de comandos. El backend se crea perezosamente antes de cada
// comando y se cierra al terminar.
func NewRootCommand(cfg *config.Config, factory BackendFactory) *cobra.Command {
	var backend *Backend

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Herramientas de operación del servicio de stock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationBackend] == "none" {
				return nil
			}
			b, err := factory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			backend = b
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if backend != nil && backend.Close != nil {
				backend.Close()
			}
		},
	}

	root.AddCommand(newImportCommand(cfg, func() *Backend { return backend }))
	root.AddCommand(newPublishCommand(func() *Backend { return backend }))
	root.AddCommand(newTokenCommand(cfg))
	return root
}

// annotationBackend = "none" marca comandos que no necesitan conexión al store.
const annotationBackend = "backend"

func newTokenCommand(cfg *config.Config) *cobra.Command {
	var subject, role string
	minutes := cfg.JWT.Expiration
	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Emite un Bearer Token para las rutas de escritura (firmado con JWT_SECRET)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationBackend: "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject es obligatorio")
			}
			token, err := jwt.Generate(cfg.JWT.Secret, subject, role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "identificador del cliente (sub)")
	cmd.Flags().StringVar(&role, "role", "operador", "admin | operador | integracion")
	cmd.Flags().IntVar(&minutes, "minutes", minutes, "vigencia en minutos")
	return cmd
}

func newImportCommand(cfg *config.Config, backend func() *Backend) *cobra.Command {
	file := cfg.Import.File
	encoding := cfg.Import.Encoding
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa productos desde un CSV (o el archivo embebido) y muestra el resumen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := csvsource.New(file, encoding)
			if err != nil {
				return err
			}
			report, err := backend().Importer.Run(cmd.Context(), source)
			if err != nil {
				return fmt.Errorf("importación fallida (lotes confirmados: %d): %w", report.Batches, err)
			}
			return printJSON(cmd, dto.ImportReportResponse{
				RunID:      report.RunID,
				Batches:    report.Batches,
				Rows:       report.Rows,
				StartedAt:  report.StartedAt,
				FinishedAt: report.FinishedAt,
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", file, "ruta del CSV (vacío = archivo embebido)")
	cmd.Flags().StringVar(&encoding, "encoding", encoding, "codificación: utf-8 | iso-8859-1")
	return cmd
}

func newPublishCommand(backend func() *Backend) *cobra.Command {
	publish := &cobra.Command{
		Use:   "publish",
		Short: "Publica eventos de stock en la cola",
	}

	var ean, quantity int64
	var direction string
	adjust := &cobra.Command{
		Use:   "adjust",
		Short: "Publica un evento stock.adjust (débito o crédito)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(ean, quantity); err != nil {
				return err
			}
			dir, ok := entity.ParseStockDirection(direction)
			if !ok {
				return fmt.Errorf("--direction inválido: %q (DEBIT | CREDIT)", direction)
			}
			payload, err := json.Marshal(dto.AdjustStockEvent{EAN: &ean, Quantity: &quantity, Direction: string(dir)})
			if err != nil {
				return err
			}
			return publishEvent(cmd, backend(), entity.TopicStockAdjust, payload)
		},
	}
	adjust.Flags().Int64Var(&ean, "ean", 0, "EAN del producto")
	adjust.Flags().Int64Var(&quantity, "quantity", 0, "cantidad a ajustar")
	adjust.Flags().StringVar(&direction, "direction", "", "DEBIT | CREDIT")
	_ = adjust.MarkFlagRequired("ean")
	_ = adjust.MarkFlagRequired("quantity")
	_ = adjust.MarkFlagRequired("direction")

	var decEAN, decQuantity int64
	decrement := &cobra.Command{
		Use:   "decrement",
		Short: "Publica un evento stock.decrement (siempre débito)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(decEAN, decQuantity); err != nil {
				return err
			}
			payload, err := json.Marshal(dto.DecrementStockEvent{EAN: &decEAN, Quantity: &decQuantity})
			if err != nil {
				return err
			}
			return publishEvent(cmd, backend(), entity.TopicStockDecrement, payload)
		},
	}
	decrement.Flags().Int64Var(&decEAN, "ean", 0, "EAN del producto")
	decrement.Flags().Int64Var(&decQuantity, "quantity", 0, "cantidad a descontar")
	_ = decrement.MarkFlagRequired("ean")
	_ = decrement.MarkFlagRequired("quantity")

	publish.AddCommand(adjust, decrement)
	return publish
}

func validateFlags(ean, quantity int64) error {
	if _, err := product.NewEAN(&ean); err != nil {
		return err
	}
	if quantity < 0 {
		return errors.New("--quantity no puede ser negativa")
	}
	return nil
}

func publishEvent(cmd *cobra.Command, b *Backend, topic string, payload []byte) error {
	if b.Publisher == nil {
		return errors.New("no hay cola de eventos configurada (STORE_DRIVER=postgres)")
	}
	ev, err := b.Publisher.Publish(cmd.Context(), topic, payload)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"id": ev.ID, "topic": ev.Topic, "status": ev.Status})
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
