// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Names of protocol parameters.
const (
	ConsumerKeyParam     = "oauth_consumer_key"
	NonceParam           = "oauth_nonce"
	SignatureParam       = "oauth_signature"
	SignatureMethodParam = "oauth_signature_method"
	TimestampParam       = "oauth_timestamp"
	VersionParam         = "oauth_version"
)

// Pair is one decoded name/value tuple of a request.
type Pair struct {
	Key   string
	Value string
}

// Normalized is the result of collecting a request's parameters.
type Normalized struct {
	// Signature is the raw (still base64 encoded) value of 'oauth_signature'.
	Signature string

	// Encoded is the "normalized parameters" string, RFC 5849 section 3.4.1.3.2.
	Encoded string

	// Pairs are all parameters but the signature, in the order of Encoded.
	Pairs []Pair
}

// Lookup returns the value of the first parameter named key.
func (n Normalized) Lookup(key string) (string, bool) {
	return Lookup(n.Pairs, key)
}

// Lookup returns the value of the first pair named key.
func Lookup(pairs []Pair, key string) (string, bool) {
	for idx := range pairs {
		if pairs[idx].Key == key {
			return pairs[idx].Value, true
		}
	}
	return "", false
}

// ParsePairs decodes a string in "application/x-www-form-urlencoded" format,
// keeping the order and any repetitions of the tuples.
//
// Invalid escapes and results that are not valid UTF-8 yield ErrMalformedBody.
func ParsePairs(s string) ([]Pair, error) {
	pairs := make([]Pair, 0, strings.Count(s, "&")+1)
	for s != "" {
		var field string
		if i := strings.IndexByte(s, '&'); i >= 0 {
			field, s = s[:i], s[i+1:]
		} else {
			field, s = s, ""
		}
		if field == "" {
			continue
		}

		var rawKey, rawValue string
		if i := strings.IndexByte(field, '='); i >= 0 {
			rawKey, rawValue = field[:i], field[i+1:]
		} else {
			rawKey = field
		}

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedBody, err.Error())
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedBody, err.Error())
		}
		if !utf8.ValidString(key) || !utf8.ValidString(value) {
			return nil, errors.Wrapf(ErrMalformedBody, "invalid UTF-8 in parameter %q", rawKey)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// Normalize takes out the signature and sorts and encodes the remaining pairs.
//
// Sorting is done byte-wise on the encoded names, then the encoded values,
// which is what signers following RFC 5849 do.
func Normalize(pairs []Pair) (Normalized, error) {
	var n Normalized

	type encodedPair struct {
		key, value string
		raw        Pair
	}
	sortable := make([]encodedPair, 0, len(pairs))

	found := false
	for _, p := range pairs {
		if p.Key == SignatureParam {
			if found { // which one would the signer have meant?
				return Normalized{}, errors.Wrap(ErrMalformedSignature, "repeated")
			}
			found = true
			n.Signature = p.Value
			continue
		}
		sortable = append(sortable, encodedPair{Encode(p.Key), Encode(p.Value), p})
	}
	if !found {
		return Normalized{}, ErrMissingSignature
	}

	sort.Slice(sortable, func(i, j int) bool {
		if sortable[i].key != sortable[j].key {
			return sortable[i].key < sortable[j].key
		}
		return sortable[i].value < sortable[j].value
	})

	var b strings.Builder
	n.Pairs = make([]Pair, 0, len(sortable))
	for idx := range sortable {
		if idx > 0 {
			b.WriteByte('&')
		}
		b.WriteString(sortable[idx].key)
		b.WriteByte('=')
		b.WriteString(sortable[idx].value)
		n.Pairs = append(n.Pairs, sortable[idx].raw)
	}
	n.Encoded = b.String()

	return n, nil
}
