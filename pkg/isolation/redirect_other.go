//go:build !unix

package isolation

import "os"

const redirectSupported = false

func redirectStdio(stdout, stderr *os.File) (func() error, error) {
	return nil, ErrRedirectUnsupported
}
