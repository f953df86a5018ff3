package grpcstore

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"provenant.dev/mastvm/store"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return store.ErrNotFound
	case codes.InvalidArgument:
		// Server uses InvalidArgument for malformed/undefined CIDs.
		return store.ErrInvalidCID
	case codes.DataLoss:
		// Server uses DataLoss when bytes do not match the requested CID.
		return store.ErrCIDMismatch
	case codes.FailedPrecondition:
		if st.Message() == store.ErrImmutable.Error() {
			return store.ErrImmutable
		}
		return err
	default:
		// Best-effort: if the server sent a known store error message,
		// preserve it.
		switch st.Message() {
		case store.ErrNotFound.Error():
			return store.ErrNotFound
		case store.ErrInvalidCID.Error():
			return store.ErrInvalidCID
		case store.ErrCIDMismatch.Error():
			return store.ErrCIDMismatch
		case store.ErrImmutable.Error():
			return store.ErrImmutable
		default:
			return err
		}
	}
}
