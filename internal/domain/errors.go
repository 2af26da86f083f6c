package domain

import "errors"

var (
	ErrUnknownRegion = errors.New("unknown region")
	ErrNoData        = errors.New("no leaderboard data available")
)
