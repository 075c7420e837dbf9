package lesc

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeout is the SMP transaction timer, Vol 3, Part H, 3.4.
	DefaultTimeout = 30 * time.Second

	DefaultUserTimeout = time.Minute

	MinEncryptionKeySize = 7
	MaxEncryptionKeySize = 16
)

// Config is the local side of a pairing: what we advertise in the Pairing
// Request/Response and how long we are willing to wait.
type Config struct {
	IoCap       IoCapability
	OobFlag     OobDataFlag
	AuthReq     byte
	MaxKeySize  byte
	InitKeyDist byte
	RespKeyDist byte

	// Timeout bounds every wait for a peer PDU.
	Timeout time.Duration

	// UserTimeout bounds every wait for a user response.
	UserTimeout time.Duration
}

// DefaultConfig is a bonding, Secure Connections only device without IO.
func DefaultConfig() Config {
	return Config{
		IoCap:       IoCapNoInputNoOutput,
		OobFlag:     OobNotPresent,
		AuthReq:     AuthReqSCBond,
		MaxKeySize:  MaxEncryptionKeySize,
		InitKeyDist: 0,
		RespKeyDist: KeyDistEncKey,
		Timeout:     DefaultTimeout,
		UserTimeout: DefaultUserTimeout,
	}
}

// An Option is a configuration function, which configures the pairing.
type Option func(*Config) error

// NewConfig applies opts on top of DefaultConfig.
func NewConfig(opts ...Option) (Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Apply runs opts against c, stopping at the first error.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// OptIoCapability sets the advertised IO capability.
func OptIoCapability(io IoCapability) Option {
	return func(c *Config) error {
		if io >= IoCapsReservedStart {
			return fmt.Errorf("invalid io capability 0x%02x", uint8(io))
		}
		c.IoCap = io
		return nil
	}
}

// OptAuthReq overrides the AuthReq octet. The Secure Connections bit is
// always kept set.
func OptAuthReq(authReq byte) Option {
	return func(c *Config) error {
		c.AuthReq = authReq | AuthReqSC
		return nil
	}
}

// OptMitm requests (or stops requesting) MITM protection.
func OptMitm(enable bool) Option {
	return func(c *Config) error {
		if enable {
			c.AuthReq |= AuthReqMitm
		} else {
			c.AuthReq &^= AuthReqMitm
		}
		return nil
	}
}

// OptOobDataPresent sets the advertised OOB data flag.
func OptOobDataPresent(present bool) Option {
	return func(c *Config) error {
		c.OobFlag = OobNotPresent
		if present {
			c.OobFlag = OobPresent
		}
		return nil
	}
}

// OptMaxKeySize sets the maximum encryption key size.
func OptMaxKeySize(sz byte) Option {
	return func(c *Config) error {
		if sz < MinEncryptionKeySize || sz > MaxEncryptionKeySize {
			return fmt.Errorf("invalid key size %d", sz)
		}
		c.MaxKeySize = sz
		return nil
	}
}

// OptKeyDistribution sets the initiator and responder key distribution.
func OptKeyDistribution(init, resp byte) Option {
	return func(c *Config) error {
		c.InitKeyDist = init
		c.RespKeyDist = resp
		return nil
	}
}

// OptTimeout sets the PDU wait timeout.
func OptTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("invalid timeout %v", d)
		}
		c.Timeout = d
		return nil
	}
}

// OptUserTimeout sets the user response timeout.
func OptUserTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("invalid user timeout %v", d)
		}
		c.UserTimeout = d
		return nil
	}
}
