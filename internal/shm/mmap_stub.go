// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix

package shm

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("shm: shared mappings not supported on this platform")

func mapShared(file *os.File, size int) ([]byte, error) {
	return nil, errUnsupported
}

func unmapShared(data []byte) error {
	return errUnsupported
}
