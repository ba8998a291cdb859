package reason

import "errors"

// denial carries a Code out of a transaction callback so the transaction
// rolls back without the caller treating it as a failure.
type denial struct {
	code Code
}

func (d *denial) Error() string { return "denied: " + string(d.code) }

// Deny returns an error that rolls back the surrounding transaction.
func Deny(code Code) error {
	return &denial{code: code}
}

// Split separates a transaction result into a business outcome and a real
// error. Exactly one of them is set, or neither on success.
func Split(err error) (Code, error) {
	if err == nil {
		return OK, nil
	}
	var d *denial
	if errors.As(err, &d) {
		return d.code, nil
	}
	return OK, err
}
