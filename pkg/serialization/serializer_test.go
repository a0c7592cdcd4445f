package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    string            `json:"id" msgpack:"id"`
	Count int               `json:"count" msgpack:"count"`
	Tags  map[string]string `json:"tags" msgpack:"tags"`
}

func samplePayload() payload {
	return payload{
		ID:    "cp-1",
		Count: 7,
		Tags:  map[string]string{"run": "alpha", "level": "2"},
	}
}

func TestSerializer_RoundTrip(t *testing.T) {
	codecs := []Codec{NewJSONCodec(), NewMsgpackCodec()}
	compressions := []CompressionType{CompressionNone, CompressionGzip, CompressionZstd}

	for _, codec := range codecs {
		for _, compression := range compressions {
			t.Run(codec.Name()+"/"+string(compression), func(t *testing.T) {
				s := New(Config{Codec: codec, Compression: compression})

				data, err := s.Serialize(samplePayload())
				require.NoError(t, err)

				var out payload
				require.NoError(t, s.Deserialize(data, &out))
				assert.Equal(t, samplePayload(), out)
			})
		}
	}
}

func TestSerializer_Encryption(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	s := New(Config{Codec: NewJSONCodec(), EncryptKey: key})

	data, err := s.Serialize(samplePayload())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cp-1")

	var out payload
	require.NoError(t, s.Deserialize(data, &out))
	assert.Equal(t, samplePayload(), out)

	// a different key cannot decrypt
	otherKey := make([]byte, 32)
	other := New(Config{Codec: NewJSONCodec(), EncryptKey: otherKey})
	assert.Error(t, other.Deserialize(data, &out))
}

func TestSerializer_Defaults(t *testing.T) {
	s := Default()
	data, err := s.Serialize(samplePayload())
	require.NoError(t, err)

	var out payload
	require.NoError(t, s.Deserialize(data, &out))
	assert.Equal(t, samplePayload(), out)

	// nil codec selects msgpack
	fallback := New(Config{})
	data, err = fallback.Serialize(samplePayload())
	require.NoError(t, err)
	require.NoError(t, fallback.Deserialize(data, &out))
	assert.Equal(t, samplePayload(), out)
}

func TestCodec_Names(t *testing.T) {
	assert.Equal(t, "json", NewJSONCodec().Name())
	assert.Equal(t, "msgpack", NewMsgpackCodec().Name())
}
