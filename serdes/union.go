package serdes

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/unitoftime/binary"
)

const envelopeVersion uint8 = 1

var ErrVersion = errors.New("unsupported encoding version")

// envelope frames every binary message. Payload holds the message itself.
type envelope struct {
	Version uint8
	Type    MessageType
	Payload []byte
}

// Union encodes a fixed set of message structs, each under its own MessageType.
type Union struct {
	tags     map[reflect.Type]MessageType
	decoders map[MessageType]func([]byte) (any, error)
}

func NewUnion() *Union {
	return &Union{
		tags:     make(map[reflect.Type]MessageType),
		decoders: make(map[MessageType]func([]byte) (any, error)),
	}
}

// Register adds T to u under tag. Registering a tag twice panics.
func Register[T any](u *Union, tag MessageType) {
	if _, dup := u.decoders[tag]; dup {
		panic(fmt.Sprintf("serdes: message type %d registered twice", tag))
	}
	var zero T
	u.tags[reflect.TypeOf(zero)] = tag
	u.decoders[tag] = func(dat []byte) (any, error) {
		var v T
		err := binary.Unmarshal(dat, &v)
		return v, err
	}
}

func (u *Union) Serialize(val any) ([]byte, error) {
	tag, ok := u.tags[reflect.TypeOf(val)]
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, val)
	}

	payload, err := binary.Marshal(val)
	if err != nil {
		return nil, err
	}
	return binary.Marshal(envelope{
		Version: envelopeVersion,
		Type:    tag,
		Payload: payload,
	})
}

func (u *Union) Deserialize(dat []byte) (any, error) {
	env := envelope{}
	err := binary.Unmarshal(dat, &env)
	if err != nil {
		return nil, err
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, env.Version)
	}

	decode, ok := u.decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownType, env.Type)
	}
	return decode(env.Payload)
}
