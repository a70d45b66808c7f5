package types

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the order execution type.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // Good Till Cancel
	OrderTypeFOK OrderType = "FOK" // Fill or Kill
	OrderTypeGTD OrderType = "GTD" // Good Till Date
	OrderTypeFAK OrderType = "FAK" // Fill and Kill
)

// Chain identifies the blockchain network.
type Chain int

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// SignatureType tells the exchange how the order signature was produced.
type SignatureType int

const (
	SignatureTypeEOA        SignatureType = 0 // standard Ethereum wallet
	SignatureTypeMagic      SignatureType = 1 // POLY_PROXY, Magic Link accounts
	SignatureTypeGnosisSafe SignatureType = 2 // GNOSIS_SAFE proxy wallet
)

// TickSize is the market price resolution.
type TickSize string

const (
	TickSize01    TickSize = "0.1"
	TickSize001   TickSize = "0.01"
	TickSize0001  TickSize = "0.001"
	TickSize00001 TickSize = "0.0001"
)

// APICreds holds CLOB L2 API credentials.
type APICreds struct {
	Key        string
	Secret     string
	Passphrase string
}

// APICredsRaw is the wire format of API credentials.
type APICredsRaw struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// BuilderConfig holds builder attribution credentials. When present the
// trading client attaches HMAC-signed POLY_BUILDER_* headers to every
// order placement.
type BuilderConfig struct {
	Key        string
	Secret     string
	Passphrase string
}
