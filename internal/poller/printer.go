package poller

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"
)

// PrinterSink writes one line per reading. JSON cannot carry NaN, so
// readings are printed as JSON only when unset values are replaced by 0.
type PrinterSink struct {
	out        io.Writer
	replaceNaN bool
}

func NewPrinterSink(out io.Writer, replaceNaN bool) *PrinterSink {
	return &PrinterSink{out: out, replaceNaN: replaceNaN}
}

func (s *PrinterSink) Publish(reading *pac_modbus.Reading) error {
	if !s.replaceNaN {
		_, err := fmt.Fprintln(s.out, reading.String())
		return err
	}
	line, err := json.Marshal(reading.AsMap(true))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, string(line))
	return err
}
