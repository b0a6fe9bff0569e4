// Package graph is a small Microsoft Graph REST client covering what the
// upload job needs: client-credentials token acquisition, SharePoint site and
// drive resolution, drive item content upload and sendMail.
//
// Every call takes the bearer token explicitly; the client holds no token state.
package graph
