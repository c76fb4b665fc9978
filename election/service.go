// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-elect/storage"
)

type Options struct {
	// PasswordCost is the bcrypt cost for admin and voter passwords
	PasswordCost int
	// IPSalt salts the hashed client address stored with each vote
	IPSalt string
}

// Service implements every election operation. Each call runs in its own
// transaction and holds no state between calls.
type Service struct {
	store *storage.Store
	log   *slog.Logger
	opts  Options
	now   func() time.Time
}

func New(store *storage.Store, log *slog.Logger, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	return &Service{
		store: store,
		log:   log,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}
