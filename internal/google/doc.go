// Package google resolves the Google credentials used to call the Google Ads
// API and builds authenticated HTTP clients from them.
//
// Credentials are looked up in a fixed order: an inline base64 encoded JSON
// key, a JSON key file, an OAuth client with a refresh token, and finally
// Application Default Credentials. The Source of the resolved credentials is
// reported so operators can see which path was taken.
package google
