package signing

// Checkable holds a candidate signature and the data it claims to sign.
type Checkable struct {
	Signature string
	Signable  Signable
}

func NewCheckable(signature, algorithm, data string) Checkable {
	return Checkable{
		Signature: signature,
		Signable:  NewSignable(algorithm, data),
	}
}

// Check reports whether key produces the held signature. The error is non-nil only
// when the algorithm is not registered.
func (c Checkable) Check(key string) (bool, error) {
	expected, err := c.Signable.Sign(key)
	if err != nil {
		return false, err
	}
	return Compare(expected, c.Signature), nil
}
