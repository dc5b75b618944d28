package session

// Fixed keys the session is written under in durable storage.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	PersistKey      = "auth-storage"
)

// Storage is the durable client storage the session survives reloads in.
type Storage interface {
	// Get returns the value stored under key; ok is false when there is none.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(keys ...string) error
}
