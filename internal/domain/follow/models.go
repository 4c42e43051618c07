package follow

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrSelfFollow    = errors.New("cannot follow yourself")
	ErrAlreadyExists = errors.New("already following")
)

// Follow is a directed edge: follower sees the followed user's drops.
type Follow struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Counts summarizes a user's social graph
type Counts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
