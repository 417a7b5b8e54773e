package repository

import (
	"errors"

	"github.com/okian/homerun/internal/domain/model"
)

// Sentinel kinds for dataset and ranking errors.
var (
	ErrNotFound          = model.ErrPlayerNotFound
	ErrInvalidLimit      = errors.New("invalid leaderboard limit")
	ErrUnsupportedSource = errors.New("unsupported dataset source")
	ErrInvalidTable      = errors.New("invalid table name")
)
