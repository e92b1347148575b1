package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/pkg/logger"
)

const defaultRequestTimeout = 2 * time.Minute

// Client talks to a Pinata-compatible pinning service.
type Client struct {
	baseURL        string
	apiKey         string
	maxUploadBytes int64
	httpClient     *http.Client
}

var _ repositories.ContentStore = (*Client)(nil)

// NewClient creates a pinning client. maxUploadBytes caps the total payload
// size checked before any bytes leave the process.
func NewClient(baseURL, apiKey string, maxUploadBytes int64) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		maxUploadBytes: maxUploadBytes,
		httpClient:     &http.Client{Timeout: defaultRequestTimeout},
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// PinFile pins a single file and returns its CID.
func (c *Client) PinFile(ctx context.Context, label string, file repositories.UploadFile) (string, error) {
	if len(file.Data) == 0 {
		return "", domainerrors.EmptyUpload("file " + file.Path + " is empty")
	}
	if err := c.checkSize(int64(len(file.Data))); err != nil {
		return "", err
	}
	return c.pin(ctx, label, []repositories.UploadFile{{Path: path.Base(file.Path), Data: file.Data}})
}

// PinDirectory pins a set of files as one directory, preserving each file's
// relative path, and returns the directory CID.
func (c *Client) PinDirectory(ctx context.Context, label string, files []repositories.UploadFile) (string, error) {
	if len(files) == 0 {
		return "", domainerrors.EmptyUpload("directory upload contains no files")
	}
	var total int64
	for _, f := range files {
		if len(f.Data) == 0 {
			return "", domainerrors.EmptyUpload("file " + f.Path + " is empty")
		}
		total += int64(len(f.Data))
	}
	if err := c.checkSize(total); err != nil {
		return "", err
	}

	// Pinata derives the wrapping directory from a shared path prefix.
	prefixed := make([]repositories.UploadFile, len(files))
	for i, f := range files {
		prefixed[i] = repositories.UploadFile{
			Path: label + "/" + strings.TrimPrefix(f.Path, "/"),
			Data: f.Data,
		}
	}
	return c.pin(ctx, label, prefixed)
}

// Unpin removes a pin. Unpinning a CID the service does not know is not an
// error; the call is safe to retry.
func (c *Client) Unpin(ctx context.Context, cid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/pinning/unpin/"+cid, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.Upload("unpin request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Info(ctx, "unpinned content", zap.String("cid", cid))
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		logger.Warn(ctx, "unpin target not pinned", zap.String("cid", cid))
		return nil
	}
	return c.serviceError(ctx, resp, "unpin")
}

func (c *Client) pin(ctx context.Context, label string, files []repositories.UploadFile) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		part, err := createFilePart(writer, f.Path)
		if err != nil {
			return "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return "", err
		}
	}
	meta, _ := json.Marshal(map[string]string{"name": label})
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.Upload("pin request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.serviceError(ctx, resp, "pin")
	}

	var parsed pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", domainerrors.Upload("invalid pin response", err)
	}
	if parsed.IpfsHash == "" {
		return "", domainerrors.Upload("pin response missing CID", nil)
	}

	logger.Info(ctx, "pinned content",
		zap.String("cid", parsed.IpfsHash),
		zap.String("label", label),
		zap.Int("files", len(files)))
	return parsed.IpfsHash, nil
}

func (c *Client) checkSize(total int64) error {
	if c.maxUploadBytes > 0 && total > c.maxUploadBytes {
		return domainerrors.Upload(fmt.Sprintf("upload of %d bytes exceeds limit of %d bytes", total, c.maxUploadBytes), nil)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) serviceError(ctx context.Context, resp *http.Response, op string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	reason := strings.TrimSpace(string(raw))
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && len(parsed.Error) > 0 {
		reason = strings.Trim(string(parsed.Error), `"`)
	}

	logger.Error(ctx, "pinning service rejected request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("reason", reason))
	return domainerrors.Upload(fmt.Sprintf("%s failed with status %d: %s", op, resp.StatusCode, reason), nil)
}

// createFilePart adds a form part named "file" whose filename keeps the
// relative path, which is how the pinning service reconstructs directories.
func createFilePart(w *multipart.Writer, filePath string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filePath)))
	header.Set("Content-Type", "application/octet-stream")
	return w.CreatePart(header)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
