package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/pkg/metrics"
)

// CSVReader 读取带表头的 CSV，Logger 用于记录被跳过的行。
type CSVReader struct {
	Logger zerolog.Logger
}

// ReadCSV 使用全局 logger 读取 CSV，见 CSVReader.Read。
func ReadCSV(r io.Reader) ([]map[string]string, error) {
	return (&CSVReader{Logger: logging.Component("ingest")}).Read(r)
}

// Read 读取带表头的 CSV，每行转换为 列名 -> 值。
//
// 表头的 BOM 与首尾空白会被去除；行的字段数可以少于表头（缺失列不出现在 map 中），
// 多出的字段被忽略。引号不合法的行被记录并跳过，其余行照常返回。
// 没有表头的空输入、表头无法解析或底层读取失败时返回错误。
func (c *CSVReader) Read(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.NewMalformedInputError(core.ModuleIngest, "csv: empty input")
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleIngest, core.ErrorCodeMalformedInput, "csv: read header", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			metrics.CSVLinesSkipped.Inc()
			c.Logger.Warn().
				Int("line", perr.StartLine).
				Err(perr.Err).
				Msg("skip malformed csv line")
			continue
		}
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleIngest, core.ErrorCodeMalformedInput, "csv: read", err)
		}

		row := make(map[string]string, len(header))
		for i, v := range record {
			if i >= len(header) {
				break
			}
			if header[i] == "" {
				continue
			}
			row[header[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
