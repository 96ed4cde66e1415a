package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// WebhookSecretHeaderName is the HTTP header the form provider signs its
// deliveries with.
const WebhookSecretHeaderName = "X-Webhook-Secret"

// RecentActivityLimit is how many submissions the dashboard feed shows.
const RecentActivityLimit = 5
