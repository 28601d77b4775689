package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/logging"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffITEM_ID, USER_ID ,EVENT_VALUE,POSITIVE_KEYWORDS\n" +
		"A,u1,POSITIVE,\"campus,food\"\n" +
		"B,u2\n" +
		"C,u3,NEGATIVE,x,extra\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0]["ITEM_ID"] != "A" || rows[0]["USER_ID"] != "u1" {
		t.Errorf("header should be trimmed and BOM removed, got %v", rows[0])
	}
	if rows[0]["POSITIVE_KEYWORDS"] != "campus,food" {
		t.Errorf("quoted field = %q", rows[0]["POSITIVE_KEYWORDS"])
	}
	if _, ok := rows[1]["EVENT_VALUE"]; ok {
		t.Errorf("short row should not contain missing columns, got %v", rows[1])
	}
	if len(rows[2]) != 4 {
		t.Errorf("extra fields should be ignored, got %v", rows[2])
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("USER_ID,u1,u2\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("header-only input should give an empty, non-nil batch, got %#v", rows)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	if !errors.Is(err, core.ErrMalformedInput) {
		t.Errorf("ReadCSV(empty) error = %v, want MALFORMED_INPUT", err)
	}
}

func TestReadCSV_SkipsMalformedLines(t *testing.T) {
	input := "ITEM_ID,USER_ID,EVENT_VALUE\n" +
		"A,u1,POSITIVE\n" +
		"B,u2,\"bad\"quote\n" +
		"C,u3,bare\"quote\n" +
		"D,u4,NEGATIVE\n"

	rows, err := (&CSVReader{Logger: logging.Nop()}).Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r["ITEM_ID"])
	}
	if strings.Join(got, ",") != "A,D" {
		t.Errorf("items = %v, want [A D]", got)
	}
}

type failingReader struct{ data io.Reader }

func (f *failingReader) Read(p []byte) (int, error) {
	n, err := f.data.Read(p)
	if err == io.EOF {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestReadCSV_ReadFailure(t *testing.T) {
	r := &failingReader{data: strings.NewReader("ITEM_ID,USER_ID\nA,u1\n")}
	if _, err := (&CSVReader{Logger: logging.Nop()}).Read(r); !errors.Is(err, core.ErrMalformedInput) {
		t.Errorf("Read() error = %v, want MALFORMED_INPUT", err)
	}
}
