//go:build !tensorflow

package tensorflow

func openGraphSession(_, _, _ string) (session, error) {
	return nil, ErrRuntimeUnavailable
}
