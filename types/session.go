package types

// Session is the server side state behind the session cookie
type Session struct {
	ID        string `cbor:"id" json:"id"`
	PublicKey string `cbor:"publicKey" json:"publicKey"`
	Created   int64  `cbor:"created" json:"created"` // unix millis
}
