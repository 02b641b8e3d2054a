package service

import "errors"

// ErrTeamNotFound is returned when a team code cannot be resolved.
var ErrTeamNotFound = errors.New("team not found")
