package game

import "strconv"

// Status is the integer result every bridge call returns to the guest.
// Zero is success; negative values are errors.
type Status int32

const (
	OK                 Status = 0
	ErrNotOwner        Status = -1
	ErrNoPath          Status = -2
	ErrNameExists      Status = -3
	ErrBusy            Status = -4
	ErrNotFound        Status = -5
	ErrNotEnoughEnergy Status = -6
	ErrInvalidTarget   Status = -7
	ErrFull            Status = -8
	ErrNotInRange      Status = -9
	ErrInvalidArgs     Status = -10
	ErrTired           Status = -11
	ErrNoBodypart      Status = -12
	ErrRCLNotEnough    Status = -14

	// Bridge misuse, outside the game's own range.
	ErrInvalidHandle Status = -100
	ErrRegistration  Status = -101
)

var statusNames = map[Status]string{
	OK:                 "OK",
	ErrNotOwner:        "ERR_NOT_OWNER",
	ErrNoPath:          "ERR_NO_PATH",
	ErrNameExists:      "ERR_NAME_EXISTS",
	ErrBusy:            "ERR_BUSY",
	ErrNotFound:        "ERR_NOT_FOUND",
	ErrNotEnoughEnergy: "ERR_NOT_ENOUGH_ENERGY",
	ErrInvalidTarget:   "ERR_INVALID_TARGET",
	ErrFull:            "ERR_FULL",
	ErrNotInRange:      "ERR_NOT_IN_RANGE",
	ErrInvalidArgs:     "ERR_INVALID_ARGS",
	ErrTired:           "ERR_TIRED",
	ErrNoBodypart:      "ERR_NO_BODYPART",
	ErrRCLNotEnough:    "ERR_RCL_NOT_ENOUGH",
	ErrInvalidHandle:   "ERR_INVALID_HANDLE",
	ErrRegistration:    "ERR_REGISTRATION",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "STATUS(" + strconv.Itoa(int(s)) + ")"
}

// Err returns nil for OK and a StatusError otherwise.
func (s Status) Err() error {
	if s == OK {
		return nil
	}
	return StatusError(s)
}

// StatusError adapts a non-OK status to the error interface for guest code
// that prefers error returns.
type StatusError Status

func (e StatusError) Error() string {
	return Status(e).String()
}
