package loader

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"time"
)

// StatusError reports a non-2xx answer from a schema URL.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("loader: %s answered %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

const acceptSchema = "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5"

func loadURL(ctx context.Context, client *http.Client, location string, timeout time.Duration, limit int64) ([]byte, error) {
	if client == nil {
		return nil, fmt.Errorf("loader: no http client for %s", location)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptSchema)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{URL: location, Code: resp.StatusCode}
	}
	// Login pages and directory listings come back as 200 text/html.
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediaType == "text/html" {
		return nil, fmt.Errorf("loader: %s returned an HTML page, not a schema document", location)
	}
	return readLimited(resp.Body, limit)
}

func loadFS(ctx context.Context, files fs.FS, name string, limit int64) ([]byte, error) {
	if files == nil {
		return nil, fmt.Errorf("loader: no filesystem configured for %s", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = path.Clean(name)
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	file, err := files.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	if info, err := file.Stat(); err == nil && info.IsDir() {
		return nil, fmt.Errorf("loader: %s is a directory", name)
	}
	return readLimited(file, limit)
}
