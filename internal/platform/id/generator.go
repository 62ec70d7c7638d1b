package id

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// InviteCodeAlphabet drops characters that are easy to misread (0/O, 1/I).
const InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const minInviteCodeLength = 6

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// CodeGenerator creates short human-typeable codes.
type CodeGenerator interface {
	NewCode(length int) (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

type InviteCodeGenerator struct{}

func NewInviteCodeGenerator() *InviteCodeGenerator {
	return &InviteCodeGenerator{}
}

func (g *InviteCodeGenerator) NewCode(length int) (string, error) {
	if length < minInviteCodeLength {
		length = minInviteCodeLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = InviteCodeAlphabet[int(b)%len(InviteCodeAlphabet)]
	}
	return string(out), nil
}
