// Package config loads the Google Ads settings of the server.
//
// Settings come from an optional google-ads.yaml file (the current directory,
// then the home directory) and are overridden by environment variables. A
// .env file in the working directory is loaded into the environment first.
package config
