package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a session start is attempted without a signed-in player.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNoQuestions indicates the provider returned an empty batch for the requested mode/region.
	ErrNoQuestions = errors.New("no questions available")
	// ErrSessionActive is returned when starting a session while another attempt is still playing.
	ErrSessionActive = errors.New("session already in progress")
	// ErrSessionFinished is returned for interactions with a session that already reached its result.
	ErrSessionFinished = errors.New("session already finished")
	// ErrRegionNotFound indicates an unknown region id for a REGIONAL session.
	ErrRegionNotFound = errors.New("region not found")
	// ErrPlayerNotRanked is returned when a player has no entry for the requested window.
	ErrPlayerNotRanked = errors.New("player not ranked in period")
)
