/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package abe

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/cabshare/abepre/data"
	"github.com/cabshare/abepre/pairing"
	"github.com/pkg/errors"
)

// The wire format is JSON. Group elements are encoded with their
// canonical encoding, which encoding/json renders as base64. Records
// of types holding group elements are decoded through the Scheme, so
// that the elements are parsed by the right group. Master secrets and
// user keys have no wire form.

type policyRecord struct {
	Matrix [][]*big.Int     `json:"matrix"`
	Rho    map[string]string `json:"rho"`
}

// MarshalJSON encodes the policy as
// {"matrix": [[1, 0], [0, -1]], "rho": {"0": "a", "1": "b"}}.
func (a *AccessPolicy) MarshalJSON() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	rec := policyRecord{
		Matrix: make([][]*big.Int, a.Mat.Rows()),
		Rho:    make(map[string]string, a.Mat.Rows()),
	}
	for i, row := range a.Mat {
		rec.Matrix[i] = []*big.Int(row)
		rec.Rho[strconv.Itoa(i)] = a.RowToAttrib[i]
	}

	return json.Marshal(rec)
}

// UnmarshalJSON decodes a policy encoded by MarshalJSON. The row
// mapping must name every row exactly once with keys "0" to "n-1".
func (a *AccessPolicy) UnmarshalJSON(b []byte) error {
	var rec policyRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return errors.Wrap(ErrMalformedPolicy, err.Error())
	}
	if len(rec.Rho) != len(rec.Matrix) {
		return errors.Wrapf(ErrMalformedPolicy, "%d labels for %d rows", len(rec.Rho), len(rec.Matrix))
	}

	labels := make([]string, len(rec.Matrix))
	for key, label := range rec.Rho {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(labels) || strconv.Itoa(i) != key {
			return errors.Wrapf(ErrMalformedPolicy, "invalid row index %q", key)
		}
		labels[i] = label
	}
	mat := make(data.Matrix, len(rec.Matrix))
	for i, row := range rec.Matrix {
		mat[i] = data.NewVector(row)
	}

	policy := AccessPolicy{Mat: mat, RowToAttrib: labels}
	if err := policy.Validate(); err != nil {
		return err
	}
	*a = policy

	return nil
}

type publicParamsRecord struct {
	Curve    string `json:"curve"`
	G        []byte `json:"g"`
	G2       []byte `json:"g2"`
	EGG      []byte `json:"egg"`
	EggAlpha []byte `json:"egg_alpha"`
	GBeta    []byte `json:"g_beta"`
	H        []byte `json:"h"`
}

// MarshalJSON encodes the public parameters.
func (pp *PublicParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicParamsRecord{
		Curve:    pp.Curve,
		G:        marshal(pp.G),
		G2:       marshal(pp.G2),
		EGG:      marshal(pp.EGG),
		EggAlpha: marshal(pp.EggAlpha),
		GBeta:    marshal(pp.GBeta),
		H:        marshal(pp.H),
	})
}

// DecodePublicParams decodes public parameters encoded with MarshalJSON.
func (s *Scheme) DecodePublicParams(b []byte) (*PublicParams, error) {
	var rec publicParamsRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, errors.Wrap(ErrMalformedKey, err.Error())
	}
	d := s.newDecoder(rec.Curve)
	pp := &PublicParams{
		Curve:    rec.Curve,
		G:        d.g1("g", rec.G),
		G2:       d.g2("g2", rec.G2),
		EGG:      d.gt("egg", rec.EGG),
		EggAlpha: d.gt("egg_alpha", rec.EggAlpha),
		GBeta:    d.g1("g_beta", rec.GBeta),
		H:        d.g1("h", rec.H),
	}
	if d.err != nil {
		return nil, errors.Wrap(ErrMalformedKey, d.err.Error())
	}

	return pp, nil
}

type publicKeyRecord struct {
	PseudoID string `json:"ptid"`
	Z        []byte `json:"z"`
}

// MarshalJSON encodes the public key.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeyRecord{PseudoID: pk.PseudoID, Z: marshal(pk.Z)})
}

// DecodePublicKey decodes a public key encoded with MarshalJSON.
func (s *Scheme) DecodePublicKey(b []byte) (*PublicKey, error) {
	var rec publicKeyRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, errors.Wrap(ErrMalformedKey, err.Error())
	}
	d := s.newDecoder(s.Group.Name())
	pk := &PublicKey{PseudoID: rec.PseudoID, Z: d.g1("z", rec.Z)}
	if d.err != nil {
		return nil, errors.Wrap(ErrMalformedKey, d.err.Error())
	}

	return pk, nil
}

type rowRecord struct {
	C []byte `json:"c"`
	D []byte `json:"d"`
	E []byte `json:"e"`
}

type payloadRecord struct {
	Nonce []byte `json:"nonce"`
	Body  []byte `json:"body"`
	Tag   []byte `json:"tag"`
}

type ciphertextRecord struct {
	Curve         string        `json:"curve"`
	Policy        *AccessPolicy `json:"policy"`
	Session       []byte        `json:"session"`
	C0            []byte        `json:"c0"`
	C1            []byte        `json:"c1"`
	Rows          []rowRecord   `json:"rows"`
	Payload       payloadRecord `json:"payload"`
	Binding       []byte        `json:"binding"`
	IntegrityHash []byte        `json:"integrity_hash"`
}

// MarshalJSON encodes the ciphertext.
func (ct *Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(ciphertextRecord{
		Curve:         ct.Curve,
		Policy:        ct.Policy,
		Session:       marshal(ct.Session),
		C0:            marshal(ct.C0),
		C1:            marshal(ct.C1),
		Rows:          encodeRows(ct.Rows),
		Payload:       payloadRecord(ct.Payload),
		Binding:       ct.Binding[:],
		IntegrityHash: ct.IntegrityHash[:],
	})
}

// DecodeCiphertext decodes a ciphertext encoded with MarshalJSON. Decoding
// errors wrap ErrIntegrityMismatch, or ErrMalformedPolicy for the policy.
func (s *Scheme) DecodeCiphertext(b []byte) (*Ciphertext, error) {
	var rec ciphertextRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		if errors.Is(err, ErrMalformedPolicy) {
			return nil, err
		}
		return nil, errors.Wrap(ErrIntegrityMismatch, err.Error())
	}
	d := s.newDecoder(rec.Curve)
	ct := &Ciphertext{
		Curve:   rec.Curve,
		Policy:  rec.Policy,
		Session: d.gt("session", rec.Session),
		C0:      d.g2("c0", rec.C0),
		C1:      d.g1("c1", rec.C1),
		Rows:    d.rows("rows", rec.Rows),
		Payload: Payload(rec.Payload),
	}
	ct.Binding = d.digest("binding", rec.Binding)
	ct.IntegrityHash = d.digest("integrity_hash", rec.IntegrityHash)
	if d.err != nil {
		return nil, errors.Wrap(ErrIntegrityMismatch, d.err.Error())
	}

	return ct, nil
}

type capsuleRecord struct {
	Session  []byte        `json:"session"`
	C0       []byte        `json:"c0"`
	Rows     []rowRecord   `json:"rows"`
	Envelope payloadRecord `json:"envelope"`
}

type attributeKeyRecord struct {
	Attribute string `json:"attribute"`
	K         []byte `json:"k"`
	KPrime    []byte `json:"k_prime"`
}

type reencryptionKeyRecord struct {
	Curve        string               `json:"curve"`
	Attributes   []string             `json:"attributes"`
	K            []byte               `json:"k"`
	L            []byte               `json:"l"`
	Components   []attributeKeyRecord `json:"components"`
	TargetPolicy *AccessPolicy        `json:"target_policy"`
	Capsule      capsuleRecord        `json:"capsule"`
	FromPseudoID string               `json:"ptid_from"`
	ToPseudoID   string               `json:"ptid_to"`
	ReceiverKey  []byte               `json:"receiver_key"`
}

// MarshalJSON encodes the re-encryption key for transfer to a proxy.
func (rk *ReencryptionKey) MarshalJSON() ([]byte, error) {
	comps := make([]attributeKeyRecord, len(rk.Components))
	for i, c := range rk.Components {
		comps[i] = attributeKeyRecord{Attribute: c.Attribute, K: marshal(c.K), KPrime: marshal(c.KPrime)}
	}

	return json.Marshal(reencryptionKeyRecord{
		Curve:        rk.Curve,
		Attributes:   rk.Attributes,
		K:            marshal(rk.K),
		L:            marshal(rk.L),
		Components:   comps,
		TargetPolicy: rk.TargetPolicy,
		Capsule:      encodeCapsule(&rk.Capsule),
		FromPseudoID: rk.FromPseudoID,
		ToPseudoID:   rk.ToPseudoID,
		ReceiverKey:  marshal(rk.ReceiverKey),
	})
}

// DecodeReencryptionKey decodes a re-encryption key encoded with MarshalJSON.
func (s *Scheme) DecodeReencryptionKey(b []byte) (*ReencryptionKey, error) {
	var rec reencryptionKeyRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		if errors.Is(err, ErrMalformedPolicy) {
			return nil, err
		}
		return nil, errors.Wrap(ErrMalformedKey, err.Error())
	}
	d := s.newDecoder(rec.Curve)
	comps := make([]AttributeKey, len(rec.Components))
	for i, c := range rec.Components {
		comps[i] = AttributeKey{
			Attribute: c.Attribute,
			K:         d.g1("components.k", c.K),
			KPrime:    d.g2("components.k_prime", c.KPrime),
		}
	}
	rk := &ReencryptionKey{
		Curve: rec.Curve,
		AttributeKeys: AttributeKeys{
			Attributes: rec.Attributes,
			K:          d.g1("k", rec.K),
			L:          d.g2("l", rec.L),
			Components: comps,
		},
		TargetPolicy: rec.TargetPolicy,
		Capsule:      d.capsule("capsule", &rec.Capsule),
		FromPseudoID: rec.FromPseudoID,
		ToPseudoID:   rec.ToPseudoID,
		ReceiverKey:  d.g1("receiver_key", rec.ReceiverKey),
	}
	if d.err != nil {
		return nil, errors.Wrap(ErrMalformedKey, d.err.Error())
	}
	if err := rk.validate(); err != nil {
		return nil, err
	}

	return rk, nil
}

type reencryptedRecord struct {
	Curve           string        `json:"curve"`
	Policy          *AccessPolicy `json:"policy"`
	Session         []byte        `json:"session"`
	C0              []byte        `json:"c0"`
	C1              []byte        `json:"c1"`
	Transformed     []byte        `json:"transformed"`
	Capsule         capsuleRecord `json:"capsule"`
	Payload         payloadRecord `json:"payload"`
	Binding         []byte        `json:"binding"`
	FromPseudoID    string        `json:"ptid_from"`
	ToPseudoID      string        `json:"ptid_to"`
	VerificationTag []byte        `json:"verification_tag"`
}

// MarshalJSON encodes the transformed ciphertext.
func (rct *ReencryptedCiphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(reencryptedRecord{
		Curve:           rct.Curve,
		Policy:          rct.Policy,
		Session:         marshal(rct.Session),
		C0:              marshal(rct.C0),
		C1:              marshal(rct.C1),
		Transformed:     marshal(rct.Transformed),
		Capsule:         encodeCapsule(&rct.Capsule),
		Payload:         payloadRecord(rct.Payload),
		Binding:         rct.Binding[:],
		FromPseudoID:    rct.FromPseudoID,
		ToPseudoID:      rct.ToPseudoID,
		VerificationTag: rct.VerificationTag,
	})
}

// DecodeReencryptedCiphertext decodes a transformed ciphertext encoded
// with MarshalJSON. Decoding errors wrap ErrIntegrityMismatch, or
// ErrMalformedPolicy for the policy.
func (s *Scheme) DecodeReencryptedCiphertext(b []byte) (*ReencryptedCiphertext, error) {
	var rec reencryptedRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		if errors.Is(err, ErrMalformedPolicy) {
			return nil, err
		}
		return nil, errors.Wrap(ErrIntegrityMismatch, err.Error())
	}
	d := s.newDecoder(rec.Curve)
	rct := &ReencryptedCiphertext{
		Curve:           rec.Curve,
		Policy:          rec.Policy,
		Session:         d.gt("session", rec.Session),
		C0:              d.g2("c0", rec.C0),
		C1:              d.g1("c1", rec.C1),
		Transformed:     d.gt("transformed", rec.Transformed),
		Capsule:         d.capsule("capsule", &rec.Capsule),
		Payload:         Payload(rec.Payload),
		FromPseudoID:    rec.FromPseudoID,
		ToPseudoID:      rec.ToPseudoID,
		VerificationTag: rec.VerificationTag,
	}
	rct.Binding = d.digest("binding", rec.Binding)
	if d.err != nil {
		return nil, errors.Wrap(ErrIntegrityMismatch, d.err.Error())
	}

	return rct, nil
}

// validate checks the structure of a decoded re-encryption key.
func (rk *ReencryptionKey) validate() error {
	if err := rk.AttributeKeys.validate(); err != nil {
		return err
	}
	if rk.TargetPolicy == nil || len(rk.Capsule.Rows) != rk.TargetPolicy.Mat.Rows() {
		return errors.Wrap(ErrMalformedKey, "capsule does not match the target policy")
	}
	if len(rk.Capsule.Envelope.Body) == 0 {
		return errors.Wrap(ErrMalformedKey, "missing capsule envelope")
	}

	return nil
}

func marshal(e interface{ Marshal() []byte }) []byte {
	if e == nil {
		return nil
	}
	return e.Marshal()
}

func encodeRows(rows []RowComponent) []rowRecord {
	out := make([]rowRecord, len(rows))
	for i, r := range rows {
		out[i] = rowRecord{C: marshal(r.C), D: marshal(r.D), E: marshal(r.E)}
	}
	return out
}

func encodeCapsule(c *Capsule) capsuleRecord {
	return capsuleRecord{
		Session:  marshal(c.Session),
		C0:       marshal(c.C0),
		Rows:     encodeRows(c.Rows),
		Envelope: payloadRecord(c.Envelope),
	}
}

// decoder parses group elements, keeping the first error.
type decoder struct {
	g   pairing.Group
	err error
}

func (s *Scheme) newDecoder(curve string) *decoder {
	d := &decoder{g: s.Group}
	if curve != s.Group.Name() {
		d.err = errors.Errorf("curve %q, expected %q", curve, s.Group.Name())
	}
	return d
}

func (d *decoder) g1(field string, b []byte) pairing.G1 {
	if d.err != nil {
		return nil
	}
	e, err := d.g.UnmarshalG1(b)
	if err != nil {
		d.err = errors.Wrapf(err, "field %s", field)
		return nil
	}
	return e
}

func (d *decoder) g2(field string, b []byte) pairing.G2 {
	if d.err != nil {
		return nil
	}
	e, err := d.g.UnmarshalG2(b)
	if err != nil {
		d.err = errors.Wrapf(err, "field %s", field)
		return nil
	}
	return e
}

func (d *decoder) gt(field string, b []byte) pairing.GT {
	if d.err != nil {
		return nil
	}
	e, err := d.g.UnmarshalGT(b)
	if err != nil {
		d.err = errors.Wrapf(err, "field %s", field)
		return nil
	}
	return e
}

func (d *decoder) rows(field string, recs []rowRecord) []RowComponent {
	rows := make([]RowComponent, len(recs))
	for i, r := range recs {
		rows[i] = RowComponent{
			C: d.g1(field+".c", r.C),
			D: d.g2(field+".d", r.D),
			E: d.g1(field+".e", r.E),
		}
	}
	return rows
}

func (d *decoder) capsule(field string, rec *capsuleRecord) Capsule {
	return Capsule{
		Session:  d.gt(field+".session", rec.Session),
		C0:       d.g2(field+".c0", rec.C0),
		Rows:     d.rows(field+".rows", rec.Rows),
		Envelope: Payload(rec.Envelope),
	}
}

func (d *decoder) digest(field string, b []byte) [32]byte {
	var out [32]byte
	if d.err != nil {
		return out
	}
	if len(b) != len(out) {
		d.err = errors.Errorf("field %s has %d bytes, expected %d", field, len(b), len(out))
		return out
	}
	copy(out[:], b)
	return out
}
