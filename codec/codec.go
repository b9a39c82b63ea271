package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
)

const (
	// MetadataEncoding marks payloads encrypted by this codec
	MetadataEncoding = "binary/encrypted"
)

// EncryptionCodec encrypts and decrypts Temporal payloads with AES-256-GCM
type EncryptionCodec struct {
	gcm cipher.AEAD
}

// NewEncryptionCodec creates a codec from a 16, 24 or 32 byte AES key
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{gcm: gcm}, nil
}

// Encode encrypts each payload and wraps it in an encrypted envelope
func (c *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		data, err := p.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}

		nonce := make([]byte, c.gcm.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}

		// Nonce is prepended to the ciphertext
		encrypted := c.gcm.Seal(nonce, nonce, data, nil)

		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				converter.MetadataEncoding: []byte(MetadataEncoding),
			},
			Data: encrypted,
		}
	}
	return result, nil
}

// Decode decrypts payloads produced by Encode; payloads with any other
// encoding pass through untouched
func (c *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.Metadata[converter.MetadataEncoding]) != MetadataEncoding {
			result[i] = p
			continue
		}

		nonceSize := c.gcm.NonceSize()
		if len(p.Data) < nonceSize {
			return nil, fmt.Errorf("encrypted payload too short: %d bytes", len(p.Data))
		}
		nonce, ciphertext := p.Data[:nonceSize], p.Data[nonceSize:]

		data, err := c.gcm.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

		decoded := &commonpb.Payload{}
		if err := decoded.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decrypted payload: %w", err)
		}
		result[i] = decoded
	}
	return result, nil
}

// NewEncryptionDataConverter wraps the default data converter with payload
// encryption using the given AES key
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	codec, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}
	return converter.NewCodecDataConverter(converter.GetDefaultDataConverter(), codec), nil
}
