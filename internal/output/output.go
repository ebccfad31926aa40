// Package output prints decoded account records as text, JSON or YAML.
//
// Every format prints one entry per account: its schema, owner, address,
// slot and balance followed by the decoded record. Decode failures print the
// error kind and details in the same shape.
//
// Decode outcomes travel as Result values through processor chains: Replay
// batches updates into DecodeProcessor, then counts each Result in a Tally
// and prints it through ResultProcessor. AccountProcessor feeds the records of
// an account pipe into the same chain.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/pkg/decoder"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
	"gopkg.in/yaml.v3"
)

// Format selects the printer encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", cerrors.InvalidInput("unknown output format %q: want text, json or yaml", name)
	}
}

// Entry is one printed account.
type Entry struct {
	Schema   string         `json:"schema"`
	Owner    string         `json:"owner"`
	Address  string         `json:"address,omitempty"`
	Slot     uint64         `json:"slot,omitempty"`
	Lamports uint64         `json:"lamports,omitempty"`
	Record   layout.Record  `json:"record,omitempty"`
	Error    string         `json:"error,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// NewEntry builds the entry for a decoded record.
func NewEntry(update types.RawAccountUpdate, record layout.Record) Entry {
	e := Entry{
		Schema:   record.Schema().String(),
		Owner:    update.Owner.String(),
		Slot:     update.Slot,
		Lamports: update.Lamports,
		Record:   record,
	}
	if !update.Address.IsZero() {
		e.Address = update.Address.String()
	}
	return e
}

// NewErrorEntry builds the entry for a failed decode. A nil err yields an
// entry with no error text.
func NewErrorEntry(update types.RawAccountUpdate, err error) Entry {
	e := Entry{
		Schema:   layout.SchemaUnknown.String(),
		Owner:    update.Owner.String(),
		Slot:     update.Slot,
		Lamports: update.Lamports,
	}
	if ce := cerrors.FromDecodeError(err); ce != nil {
		e.Error = ce.Cause.Error()
		e.Details = ce.Details
		if s, ok := ce.Details["schema"].(string); ok {
			e.Schema = s
		}
	}
	if !update.Address.IsZero() {
		e.Address = update.Address.String()
	}
	return e
}

// Printer writes entries to w. It is safe for concurrent use.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Format returns the printer's format.
func (p *Printer) Format() Format {
	return p.format
}

// PrintRecord prints a decoded record.
func (p *Printer) PrintRecord(update types.RawAccountUpdate, record layout.Record) error {
	return p.Print(NewEntry(update, record))
}

// PrintError prints a decode failure. It refuses a nil err.
func (p *Printer) PrintError(update types.RawAccountUpdate, err error) error {
	if err == nil {
		return cerrors.InvalidInput("no decode error to print for %s", update.Address)
	}
	return p.Print(NewErrorEntry(update, err))
}

// Print writes a single entry.
func (p *Printer) Print(e Entry) error {
	var (
		out []byte
		err error
	)
	switch p.format {
	case FormatJSON:
		out, err = json.Marshal(e)
		out = append(out, '\n')
	case FormatYAML:
		out, err = toYAML(e)
		out = append([]byte("---\n"), out...)
	default:
		out, err = p.text(e)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s entry: %w", e.Schema, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.w.Write(out)
	return err
}

func (p *Printer) text(e Entry) ([]byte, error) {
	var buf bytes.Buffer
	address := e.Address
	if address == "" {
		address = "-"
	}
	fmt.Fprintf(&buf, "%s %s %s", e.Schema, e.Owner, address)
	if e.Slot > 0 {
		fmt.Fprintf(&buf, " slot=%d", e.Slot)
	}
	if e.Lamports > 0 {
		fmt.Fprintf(&buf, " sol=%.9f", types.LamportsToSOL(e.Lamports))
	}
	buf.WriteByte('\n')

	var (
		body []byte
		err  error
	)
	if e.Error != "" {
		fmt.Fprintf(&buf, "  error: %s\n", e.Error)
		if len(e.Details) == 0 {
			return buf.Bytes(), nil
		}
		body, err = json.MarshalIndent(e.Details, "  ", "  ")
	} else {
		body, err = json.MarshalIndent(e.Record, "  ", "  ")
	}
	if err != nil {
		return nil, err
	}
	buf.WriteString("  ")
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// toYAML encodes v as block-style YAML with the field order of its JSON form.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow and quoting styles the JSON input carried.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// Summary counts the outcomes of a decode run.
type Summary struct {
	Total    int            `json:"total"`
	Decoded  int            `json:"decoded"`
	Failed   int            `json:"failed"`
	Invalid  int            `json:"invalid_lines,omitempty"`
	BySchema map[string]int `json:"by_schema"`
	ByKind   map[string]int `json:"by_error_kind"`
}

// PrintSummary writes s in the printer's format.
func (p *Printer) PrintSummary(s Summary) error {
	var (
		out []byte
		err error
	)
	switch p.format {
	case FormatJSON:
		out, err = json.Marshal(map[string]Summary{"summary": s})
		out = append(out, '\n')
	case FormatYAML:
		out, err = toYAML(map[string]Summary{"summary": s})
		out = append([]byte("---\n"), out...)
	default:
		out = summaryText(s)
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.w.Write(out)
	return err
}

func summaryText(s Summary) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "total=%d decoded=%d failed=%d", s.Total, s.Decoded, s.Failed)
	if s.Invalid > 0 {
		fmt.Fprintf(&buf, " invalid_lines=%d", s.Invalid)
	}
	buf.WriteByte('\n')
	for _, name := range slices.Sorted(maps.Keys(s.BySchema)) {
		fmt.Fprintf(&buf, "  %-24s %d\n", name, s.BySchema[name])
	}
	for _, kind := range slices.Sorted(maps.Keys(s.ByKind)) {
		fmt.Fprintf(&buf, "  %-24s %d\n", kind, s.ByKind[kind])
	}
	return buf.Bytes()
}

// SchemaInfo describes one registered schema.
type SchemaInfo struct {
	Name   string   `json:"name"`
	Policy string   `json:"policy"`
	Owners []string `json:"owners"`
}

// SchemaInfos lists the schemas of a registry in registration order.
func SchemaInfos(reg *decoder.Registry) []SchemaInfo {
	schemas := reg.Schemas()
	infos := make([]SchemaInfo, 0, len(schemas))
	for _, s := range schemas {
		owners := make([]string, 0, len(s.Owners))
		for _, o := range s.Owners {
			owners = append(owners, o.String())
		}
		infos = append(infos, SchemaInfo{Name: s.Name(), Policy: s.Policy.String(), Owners: owners})
	}
	return infos
}

// PrintSchemas writes the schema list in the printer's format.
func (p *Printer) PrintSchemas(infos []SchemaInfo) error {
	var (
		out []byte
		err error
	)
	switch p.format {
	case FormatJSON:
		out, err = json.Marshal(infos)
		out = append(out, '\n')
	case FormatYAML:
		out, err = toYAML(infos)
	default:
		var buf bytes.Buffer
		for _, info := range infos {
			fmt.Fprintf(&buf, "%-28s %-16s %s\n", info.Name, info.Policy, strings.Join(info.Owners, ","))
		}
		out = buf.Bytes()
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.w.Write(out)
	return err
}
