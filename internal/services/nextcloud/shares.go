package nextcloud

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"lecturebot/internal/logging"
	"lecturebot/internal/services"
)

const (
	sharesEndpoint = "/ocs/v2.php/apps/files_sharing/api/v1/shares"

	shareTypePublicLink = 3
	permissionRead      = 1
)

type ocsMeta struct {
	Status     string `xml:"status"`
	StatusCode int    `xml:"statuscode"`
	Message    string `xml:"message"`
}

type ocsShare struct {
	ID        string `xml:"id"`
	ShareType int    `xml:"share_type"`
	Path      string `xml:"path"`
	URL       string `xml:"url"`
}

// ocsListResponse is the shape of GET /shares: data holds <element> items.
type ocsListResponse struct {
	Meta     ocsMeta    `xml:"meta"`
	Elements []ocsShare `xml:"data>element"`
}

// ocsCreateResponse is the shape of POST /shares: data is the share itself.
type ocsCreateResponse struct {
	Meta  ocsMeta  `xml:"meta"`
	Share ocsShare `xml:"data"`
}

// EnsureShare returns the public link for remote, creating a read-only link
// when the server reports none.
func (c *Client) EnsureShare(ctx context.Context, remote string) (string, error) {
	link, err := c.FindShare(ctx, remote)
	if err != nil {
		c.logger.Debug("share lookup failed; creating", logging.String("remote", remote), logging.Error(err))
	} else if link != "" {
		return link, nil
	}
	return c.CreateShare(ctx, remote)
}

// FindShare returns an existing public link for remote, or "" when none.
func (c *Client) FindShare(ctx context.Context, remote string) (string, error) {
	query := url.Values{}
	query.Set("path", "/"+Join(remote))
	query.Set("reshares", "true")
	query.Set("subfiles", "false")

	var parsed ocsListResponse
	status, err := c.ocs(ctx, http.MethodGet, sharesEndpoint+"?"+query.Encode(), nil, &parsed)
	if err != nil {
		if status == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	for _, share := range parsed.Elements {
		if share.ShareType == shareTypePublicLink && strings.TrimSpace(share.URL) != "" {
			return strings.TrimSpace(share.URL), nil
		}
	}
	return "", nil
}

// CreateShare creates a read-only public link for remote.
func (c *Client) CreateShare(ctx context.Context, remote string) (string, error) {
	form := url.Values{}
	form.Set("path", "/"+Join(remote))
	form.Set("shareType", strconv.Itoa(shareTypePublicLink))
	form.Set("permissions", strconv.Itoa(permissionRead))

	var parsed ocsCreateResponse
	if _, err := c.ocs(ctx, http.MethodPost, sharesEndpoint, strings.NewReader(form.Encode()), &parsed); err != nil {
		return "", err
	}
	link := strings.TrimSpace(parsed.Share.URL)
	if link == "" {
		return "", services.Wrap(services.ErrPublish, "nextcloud", "create share", "response without url", nil)
	}
	c.logger.Info("public share created",
		logging.String(logging.FieldEventType, "share_created"),
		logging.String("remote", remote),
	)
	return link, nil
}

// ocs performs an OCS API call and decodes the XML envelope into out.
// The HTTP status is returned even on error so callers can special-case 404.
func (c *Client) ocs(ctx context.Context, method, endpoint string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return 0, services.Wrap(services.ErrPublish, "nextcloud", "ocs", "build request", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("OCS-APIRequest", "true")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrPublish, "nextcloud", "ocs", method+" shares", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, services.Wrap(services.ErrPublish, "nextcloud", "ocs", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, services.Wrap(services.ErrPublish, "nextcloud", "ocs",
			fmt.Sprintf("%s shares returned %d: %s", method, resp.StatusCode, snippet(payload)), nil)
	}
	if err := xml.Unmarshal(payload, out); err != nil {
		return resp.StatusCode, services.Wrap(services.ErrPublish, "nextcloud", "ocs", "decode response", err)
	}
	return resp.StatusCode, nil
}

func snippet(payload []byte) string {
	text := strings.Join(strings.Fields(string(payload)), " ")
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
