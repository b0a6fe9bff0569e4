package graph

import (
	"context"
	"fmt"
	"net/url"

	jmes "github.com/jmespath/go-jmespath"

	"spupload/pkg/problems"
)

var (
	siteIDExpr = jmes.MustCompile("id")
	drivesExpr = jmes.MustCompile("value[].{name: name, id: id}")
)

// SitePath is the site-by-path resource for a hostname and site name.
func SitePath(domain, siteName string) string {
	return fmt.Sprintf("/sites/%s:/sites/%s", domain, url.PathEscape(siteName))
}

// SiteID resolves a site from its hostname and site name.
func (c *Client) SiteID(ctx context.Context, token, domain, siteName string) (string, error) {
	if domain == "" || siteName == "" {
		return "", problems.Errorf(problems.ResolutionFailure, "site", "DOMAIN and SITE_NAME are required")
	}
	doc, err := c.getJSON(ctx, SitePath(domain, siteName), token)
	if err != nil {
		return "", problems.Errorf(problems.ResolutionFailure, "site", "site %q not found on %s: %w", siteName, domain, err)
	}
	v, err := siteIDExpr.Search(doc)
	if err != nil {
		return "", problems.New(problems.ResolutionFailure, "site", err)
	}
	id, _ := v.(string)
	if id == "" {
		return "", problems.Errorf(problems.ResolutionFailure, "site", "site %q on %s has no id", siteName, domain)
	}
	return id, nil
}

// DriveID lists the site's drives and returns the id of the one named
// driveName. Names are compared exactly, case included.
func (c *Client) DriveID(ctx context.Context, token, siteID, driveName string) (string, error) {
	doc, err := c.getJSON(ctx, "/sites/"+siteID+"/drives", token)
	if err != nil {
		return "", problems.Errorf(problems.ResolutionFailure, "drive", "list drives of site %s: %w", siteID, err)
	}
	v, err := drivesExpr.Search(doc)
	if err != nil {
		return "", problems.New(problems.ResolutionFailure, "drive", err)
	}
	entries, _ := v.([]any)
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := m["name"].(string); name == driveName {
			if id, _ := m["id"].(string); id != "" {
				return id, nil
			}
		}
	}
	return "", problems.Errorf(problems.ResolutionFailure, "drive", "drive %q not found", driveName)
}
