package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// File скачанный файл (шаблон импорта, выгрузка).
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Download GET файлового эндпоинта через тот же конвейер авторизации.
// Имя файла берётся из Content-Disposition, иначе fallbackName.
func (c *Client) Download(ctx context.Context, p string, query url.Values, fallbackName string) (*File, error) {
	target, err := c.resolve(p, query)
	if err != nil {
		return nil, err
	}
	resp, err := c.roundTrip(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}
	return &File{
		Name:        FilenameFromDisposition(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Upload multipart POST одного файла (импорт Excel).
func (c *Client) Upload(ctx context.Context, p, field, filename string, data []byte, out any) error {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	target, err := c.resolve(p, nil)
	if err != nil {
		return err
	}
	resp, err := c.roundTrip(ctx, http.MethodPost, target, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// FilenameFromDisposition имя файла из заголовка Content-Disposition.
// Понимает filename, filename* и MIME encoded-word (=?utf-8?b?...?=).
// При ошибке декодирования возвращает fallback.
func FilenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}
	var name string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	} else {
		name = rawFilename(header)
	}
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "=?") {
		dec := mime.WordDecoder{CharsetReader: charsetReader}
		decoded, err := dec.Decode(name)
		if err != nil {
			return fallback
		}
		name = decoded
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}

// rawFilename нестрогий разбор, когда заголовок не проходит mime.ParseMediaType
// (например, неэкранированный encoded-word без кавычек).
func rawFilename(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		k, v, ok := strings.Cut(part, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "filename") {
			continue
		}
		return strings.Trim(strings.TrimSpace(v), `"`)
	}
	return ""
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

// ImportResult ответ импорта: успешные строки применены, ошибки построчно.
type ImportResult struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
	Message      string   `json:"message"`
}
