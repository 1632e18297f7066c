package env

import (
	"os"
)

const (
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	UserSecretKey    = "USER_SECRET"
	AuthRedisURL     = "AUTH_REDIS_URL"
	AuthRedisPass    = "AUTH_REDIS_PASS"
	ChatRedisURL     = "CHAT_REDIS_URL"
	ChatRedisPass    = "CHAT_REDIS_PASS"
	WebURL           = "WEB_URL"
	BaseURL          = "BASE_URL"
	APIPort          = "PORT"
	WSPort           = "WS_PORT"
	SMTPHost         = "SMTP_HOST"
	SMTPPort         = "SMTP_PORT"
	SMTPUser         = "SMTP_USER"
	SMTPPass         = "SMTP_PASS"
	EmailFrom        = "EMAIL_FROM"
	RoomJoinPolicy   = "ROOM_JOIN_POLICY"
	StunURLs         = "STUN_URLS"
	TurnURLs         = "TURN_URLS"
	TurnUsername     = "TURN_USERNAME"
	TurnCredential   = "TURN_CREDENTIAL"
)

// MustValidate panics when a required variable is missing. Called from main,
// not init, so test binaries can run without a full environment.
func MustValidate() {
	required := []string{
		AWSRegion,
		UserSecretKey,
		AuthRedisURL,
		ChatRedisURL,
		WebURL,
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			panic("env: required environment variable not set: " + key)
		}
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
