// Package replay reads recorded account snapshots from JSON Lines input.
//
// Each line is one snapshot:
//
//	{"address":"...","owner":"...","data":"...","encoding":"base64","slot":1,"lamports":2}
//
// The data field is base64 unless encoding says base58 or hex. Blank lines are
// skipped. Malformed lines are logged and counted, never fatal.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/pkg/types"
	"github.com/mr-tron/base58"
)

// Data encodings accepted in the encoding field.
const (
	EncodingBase64 = "base64"
	EncodingBase58 = "base58"
	EncodingHex    = "hex"
)

// MaxLineSize bounds a single input line.
const MaxLineSize = 10 * 1024 * 1024

// Metric names recorded by the datasource.
const (
	MetricReplayLines       = "replay_lines"
	MetricReplayInvalidLine = "replay_invalid_lines"
)

// Record is one line of replay input.
type Record struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Data     string `json:"data"`
	Encoding string `json:"encoding,omitempty"`
	Slot     uint64 `json:"slot,omitempty"`
	Lamports uint64 `json:"lamports,omitempty"`
}

// Update converts the record into a raw account update.
func (r Record) Update() (types.RawAccountUpdate, error) {
	owner, err := solana.PublicKeyFromBase58(r.Owner)
	if err != nil {
		return types.RawAccountUpdate{}, fmt.Errorf("invalid owner %q: %w", r.Owner, err)
	}

	var address solana.PublicKey
	if r.Address != "" {
		address, err = solana.PublicKeyFromBase58(r.Address)
		if err != nil {
			return types.RawAccountUpdate{}, fmt.Errorf("invalid address %q: %w", r.Address, err)
		}
	}

	data, err := DecodeData(r.Data, r.Encoding)
	if err != nil {
		return types.RawAccountUpdate{}, err
	}

	return types.RawAccountUpdate{
		Address:  address,
		Owner:    owner,
		Data:     data,
		Slot:     r.Slot,
		Lamports: r.Lamports,
	}, nil
}

// DecodeData decodes s in the named encoding. An empty encoding means base64.
func DecodeData(s, encoding string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(encoding) {
	case "", EncodingBase64:
		data, err = base64.StdEncoding.DecodeString(s)
	case EncodingBase58:
		data, err = base58.Decode(s)
	case EncodingHex:
		data, err = hex.DecodeString(strings.TrimPrefix(s, "0x"))
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", encoding, err)
	}
	return data, nil
}

// invalidLine reports a line that could not be parsed as an INVALID_INPUT
// error carrying the 1-based line number.
func invalidLine(line int, err error) *errors.CarbonError {
	return errors.InvalidInput("replay line %d: %v", line, err).
		WithCause(err).
		WithDetails(map[string]any{"line": line})
}

// LineNumber returns the line a replay input error refers to, or 0.
func LineNumber(err error) int {
	var ce *errors.CarbonError
	if !errors.As(err, &ce) {
		return 0
	}
	line, _ := ce.Details["line"].(int)
	return line
}

// Scan reads r line by line and calls fn for every parsed snapshot. Lines that
// fail to parse are passed to onError as INVALID_INPUT errors. Scan
// stops early if fn returns an error.
func Scan(r io.Reader, fn func(types.RawAccountUpdate) error, onError func(*errors.CarbonError)) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			if onError != nil {
				onError(invalidLine(lineNo, err))
			}
			continue
		}
		update, err := rec.Update()
		if err != nil {
			if onError != nil {
				onError(invalidLine(lineNo, err))
			}
			continue
		}
		if err := fn(update); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

// ReadAll parses every line of r. Malformed lines are returned separately.
func ReadAll(r io.Reader) ([]types.RawAccountUpdate, []*errors.CarbonError, error) {
	var (
		updates []types.RawAccountUpdate
		bad     []*errors.CarbonError
	)
	err := Scan(r, func(u types.RawAccountUpdate) error {
		updates = append(updates, u)
		return nil
	}, func(ce *errors.CarbonError) {
		bad = append(bad, ce)
	})
	return updates, bad, err
}

// ReadFile parses the JSONL file at path, or standard input when path is "-".
func ReadFile(path string) ([]types.RawAccountUpdate, []*errors.CarbonError, error) {
	if path == "-" {
		return ReadAll(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}

// Datasource replays JSONL snapshots into the pipeline and returns once the
// input is exhausted.
type Datasource struct {
	open   func() (io.ReadCloser, error)
	name   string
	logger *slog.Logger
}

// NewFileDatasource creates a Datasource over the file at path.
func NewFileDatasource(path string) *Datasource {
	return &Datasource{
		open: func() (io.ReadCloser, error) {
			if path == "-" {
				return io.NopCloser(os.Stdin), nil
			}
			return os.Open(path)
		},
		name:   path,
		logger: slog.Default(),
	}
}

// NewReaderDatasource creates a Datasource over r.
func NewReaderDatasource(r io.Reader) *Datasource {
	return &Datasource{
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
		name:   "reader",
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (d *Datasource) WithLogger(logger *slog.Logger) *Datasource {
	d.logger = logger
	return d
}

// Consume sends every snapshot in the input to updates.
func (d *Datasource) Consume(
	ctx context.Context,
	id datasource.DatasourceID,
	updates chan<- datasource.UpdateWithSource,
	m *metrics.Collection,
) error {
	rc, err := d.open()
	if err != nil {
		return fmt.Errorf("open replay input %s: %w", d.name, err)
	}
	defer rc.Close()

	d.logger.Info("starting replay datasource",
		"datasource_id", id.String(),
		"input", d.name,
	)

	sent := 0
	err = Scan(rc, func(u types.RawAccountUpdate) error {
		_ = m.IncrementCounter(ctx, MetricReplayLines, 1)
		if err := datasource.Send(ctx, updates, id, datasource.FromRaw(u)); err != nil {
			return err
		}
		sent++
		return nil
	}, func(ce *errors.CarbonError) {
		d.logger.Warn("skipping invalid replay line", "line", LineNumber(ce), "error", ce.Cause)
		_ = m.IncrementCounter(ctx, MetricReplayInvalidLine, 1)
	})
	if err != nil {
		return err
	}

	d.logger.Info("replay complete", "input", d.name, "sent", sent)
	return nil
}

// UpdateTypes returns the types of updates this datasource can provide.
func (d *Datasource) UpdateTypes() []datasource.UpdateType {
	return []datasource.UpdateType{datasource.UpdateTypeAccount}
}
