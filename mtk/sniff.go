package mtk

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// First bytes the preloader sends once it starts streaming the DA
	// (ARM reset vector at the load address).
	sniffStartPattern = "FFFFFFEA900E00FA"
	// Start of the signature trailer at the very end of the DA stream.
	sniffEndPattern = "6ABFC9A8D7B033E7"
	// Records carrying this many hex digits or fewer are protocol chatter
	// (handshake echoes, addresses, status words), not DA payload.
	sniffMinHexDigits = 64
)

var (
	ErrSniffColumns    = errors.New("data or record column not found in capture")
	ErrNoCaptureData   = errors.New("no CDC OUT data records in capture")
	ErrPatternNotFound = errors.New("start or end pattern not found in CDC OUT data")
	ErrPatternOrder    = errors.New("start pattern found after end pattern")
	ErrNoPayload       = errors.New("no payload records between start and end patterns")
)

// What came out of a capture, mostly for reporting back to the user.
type SniffResult struct {
	Records        int // data rows in the capture
	OutRecords     int // rows carrying CDC OUT data
	PayloadRecords int // rows that contributed payload bytes
	Length         int // payload bytes recovered
}

// Recover the raw DA payload from a USB sniffer CSV export. Only host-to-
// device bulk records ("CDC OUT Data") are considered; everything before
// the record containing the start pattern and after the record containing
// the end pattern is dropped, and so are the short protocol records in
// between. Whatever hex remains is decoded and written to out.
func ExtractSniffPayload(capture io.Reader, out io.Writer) (*SniffResult, error) {
	reader := csv.NewReader(capture)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}
	dataCol := -1
	recordCol := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		if dataCol < 0 && strings.Contains(name, "Data") {
			dataCol = i
		}
		if recordCol < 0 && strings.Contains(name, "Record") {
			recordCol = i
		}
	}
	if dataCol < 0 || recordCol < 0 {
		return nil, ErrSniffColumns
	}

	result := &SniffResult{}
	var rows []string
	start := -1
	end := -1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read capture row: %w", err)
		}
		result.Records++
		if recordCol >= len(record) || dataCol >= len(record) {
			continue
		}
		if !strings.Contains(strings.ToLower(record[recordCol]), "cdc out data") {
			continue
		}
		data := normalizeHex(record[dataCol])
		if start < 0 && strings.Contains(data, sniffStartPattern) {
			start = len(rows)
		}
		if end < 0 && strings.Contains(data, sniffEndPattern) {
			end = len(rows)
		}
		rows = append(rows, data)
	}
	result.OutRecords = len(rows)
	if len(rows) == 0 {
		return nil, ErrNoCaptureData
	}
	if start < 0 || end < 0 {
		return nil, ErrPatternNotFound
	}
	if start > end {
		return nil, ErrPatternOrder
	}

	var payload strings.Builder
	for _, row := range rows[start : end+1] {
		if len(row) <= sniffMinHexDigits {
			continue
		}
		result.PayloadRecords++
		payload.WriteString(row)
	}
	if result.PayloadRecords == 0 {
		return nil, ErrNoPayload
	}
	raw, err := hex.DecodeString(payload.String())
	if err != nil {
		return nil, fmt.Errorf("decode payload hex: %w", err)
	}
	written, err := out.Write(raw)
	if err != nil {
		return nil, fmt.Errorf("write payload: %w", err)
	}
	result.Length = written
	return result, nil
}

// Like ExtractSniffPayload but on the filesystem, writing the recovered DA
// atomically the same way ExtractBodyFile does.
func ExtractSniffPayloadFile(capturePath string, outPath string) (*SniffResult, error) {
	capture, err := os.Open(capturePath)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer capture.Close()
	var result *SniffResult
	err = writeAtomic(outPath, func(out io.Writer) error {
		var werr error
		result, werr = ExtractSniffPayload(capture, out)
		return werr
	})
	return result, err
}

// Sniffer exports space their hex ("FF FF FF EA"); strip that and fold case
// so pattern searches are exact.
func normalizeHex(data string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(data), " ", ""))
}
