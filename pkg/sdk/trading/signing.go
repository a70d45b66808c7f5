package trading

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/betbot/gosdk/pkg/sdk/types"
	"github.com/betbot/gosdk/pkg/signer"
)

const (
	clobAuthDomainName = "ClobAuthDomain"
	clobAuthVersion    = "1"
	clobAuthMessage    = "This message attests that I control the given wallet"

	exchangeDomainName    = "Polymarket CTF Exchange"
	exchangeDomainVersion = "1"
)

// buildClobAuthSignature signs the ClobAuthDomain EIP-712 payload used for
// L1 authentication headers.
func buildClobAuthSignature(s signer.Signer, chainID types.Chain, timestamp, nonce int64) (string, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"ClobAuth": {
				{Name: "address", Type: "address"},
				{Name: "timestamp", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "message", Type: "string"},
			},
		},
		PrimaryType: "ClobAuth",
		Domain: apitypes.TypedDataDomain{
			Name:    clobAuthDomainName,
			Version: clobAuthVersion,
			ChainId: math.NewHexOrDecimal256(int64(chainID)),
		},
		Message: map[string]interface{}{
			"address":   s.Address().Hex(),
			"timestamp": fmt.Sprintf("%d", timestamp),
			"nonce":     big.NewInt(nonce),
			"message":   clobAuthMessage,
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", errors.Wrap(err, "hash clob auth payload")
	}
	sig, err := s.SignDigest(hash)
	if err != nil {
		return "", errors.Wrap(err, "sign clob auth payload")
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

// orderData is the EIP-712 Order message before signing.
type orderData struct {
	Salt          int64
	Maker         string
	Signer        string
	Taker         string
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          types.Side
	SignatureType types.SignatureType
}

// buildOrderSignature signs an exchange order against the
// "Polymarket CTF Exchange" domain of the given exchange contract.
func buildOrderSignature(s signer.Signer, chainID types.Chain, exchangeAddress string, od *orderData) (string, error) {
	// BUY = 0, SELL = 1 on the wire.
	var side int64 = 1
	if od.Side == types.SideBuy {
		side = 0
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Order": {
				{Name: "salt", Type: "uint256"},
				{Name: "maker", Type: "address"},
				{Name: "signer", Type: "address"},
				{Name: "taker", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "makerAmount", Type: "uint256"},
				{Name: "takerAmount", Type: "uint256"},
				{Name: "expiration", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "feeRateBps", Type: "uint256"},
				{Name: "side", Type: "uint8"},
				{Name: "signatureType", Type: "uint8"},
			},
		},
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              exchangeDomainName,
			Version:           exchangeDomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: exchangeAddress,
		},
		Message: map[string]interface{}{
			"salt":          big.NewInt(od.Salt),
			"maker":         common.HexToAddress(od.Maker).Hex(),
			"signer":        common.HexToAddress(od.Signer).Hex(),
			"taker":         common.HexToAddress(od.Taker).Hex(),
			"tokenId":       od.TokenID,
			"makerAmount":   od.MakerAmount,
			"takerAmount":   od.TakerAmount,
			"expiration":    od.Expiration,
			"nonce":         od.Nonce,
			"feeRateBps":    od.FeeRateBps,
			"side":          big.NewInt(side),
			"signatureType": big.NewInt(int64(od.SignatureType)),
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", errors.Wrap(err, "hash order payload")
	}
	sig, err := s.SignDigest(hash)
	if err != nil {
		return "", errors.Wrap(err, "sign order payload")
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

// buildHmacSignature computes the L2 request signature:
// HMAC-SHA256 over timestamp + method + path + body with the base64url
// decoded secret, emitted base64url-encoded.
func buildHmacSignature(secret string, timestamp int64, method, requestPath string, body *string) (string, error) {
	message := strconv.FormatInt(timestamp, 10) + method + requestPath
	if body != nil {
		message += *body
	}

	// Secrets arrive base64url-encoded.
	sanitized := strings.ReplaceAll(secret, "-", "+")
	sanitized = strings.ReplaceAll(sanitized, "_", "/")
	keyData, err := base64.StdEncoding.DecodeString(sanitized)
	if err != nil {
		return "", errors.Wrap(err, "decode api secret")
	}

	mac := hmac.New(sha256.New, keyData)
	mac.Write([]byte(message))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// Back to URL-safe base64, keeping the padding.
	sig = strings.ReplaceAll(sig, "+", "-")
	sig = strings.ReplaceAll(sig, "/", "_")
	return sig, nil
}

// l1Headers builds the EIP-712 authentication headers for key management
// endpoints.
func l1Headers(s signer.Signer, chainID types.Chain, nonce int64) (map[string]string, error) {
	ts := time.Now().Unix()
	sig, err := buildClobAuthSignature(s, chainID, ts, nonce)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"POLY_ADDRESS":   s.Address().Hex(),
		"POLY_SIGNATURE": sig,
		"POLY_TIMESTAMP": strconv.FormatInt(ts, 10),
		"POLY_NONCE":     strconv.FormatInt(nonce, 10),
	}, nil
}

// l2Headers builds the HMAC authentication headers for trading endpoints.
func l2Headers(s signer.Signer, creds *types.APICreds, method, requestPath string, body *string) (map[string]string, error) {
	ts := time.Now().Unix()
	sig, err := buildHmacSignature(creds.Secret, ts, method, requestPath, body)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"POLY_ADDRESS":    s.Address().Hex(),
		"POLY_SIGNATURE":  sig,
		"POLY_TIMESTAMP":  strconv.FormatInt(ts, 10),
		"POLY_API_KEY":    creds.Key,
		"POLY_PASSPHRASE": creds.Passphrase,
	}, nil
}

// builderHeaders attaches builder attribution: the same HMAC scheme under
// the builder credentials, on POLY_BUILDER_* header names.
func builderHeaders(builder *types.BuilderConfig, method, requestPath string, body *string) (map[string]string, error) {
	ts := time.Now().Unix()
	sig, err := buildHmacSignature(builder.Secret, ts, method, requestPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "builder signature")
	}
	return map[string]string{
		"POLY_BUILDER_API_KEY":    builder.Key,
		"POLY_BUILDER_PASSPHRASE": builder.Passphrase,
		"POLY_BUILDER_SIGNATURE":  sig,
		"POLY_BUILDER_TIMESTAMP":  strconv.FormatInt(ts, 10),
	}, nil
}
