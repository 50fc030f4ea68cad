package sbox

import "errors"

var ErrMalformedTable = errors.New("sbox: substitution table is not a bijection")
