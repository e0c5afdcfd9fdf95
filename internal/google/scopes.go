package google

// AdWordsScope grants access to the Google Ads API.
const AdWordsScope = "https://www.googleapis.com/auth/adwords"

// DefaultScopes are the OAuth scopes requested for every credential type.
var DefaultScopes = []string{AdWordsScope}
