package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ItemContentPath is the drive-item-by-path content resource for destPath
// ("Subfolder/name.csv"). Each segment is escaped on its own.
func ItemContentPath(siteID, driveID, destPath string) string {
	segs := strings.Split(strings.Trim(destPath, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/sites/" + siteID + "/drives/" + driveID + "/root:/" + strings.Join(segs, "/") + ":/content"
}

// PutContent uploads content to destPath, replacing any existing item.
func (c *Client) PutContent(ctx context.Context, token, siteID, driveID, destPath string, content io.Reader) (DriveItem, error) {
	body, _, err := c.do(ctx, http.MethodPut, ItemContentPath(siteID, driveID, destPath), token, content, "application/octet-stream")
	if err != nil {
		return DriveItem{}, err
	}
	var item DriveItem
	if len(body) > 0 {
		_ = json.Unmarshal(body, &item)
	}
	return item, nil
}
