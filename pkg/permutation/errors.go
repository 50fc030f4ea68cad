package permutation

import "errors"

var ErrDegeneratePermutation = errors.New("permutation: affine mapping is not a bijection")
