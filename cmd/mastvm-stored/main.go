package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"provenant.dev/mastvm/store"
	"provenant.dev/mastvm/store/grpcstore"
)

func main() {
	fs := flag.NewFlagSet("mastvm-stored", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7707", "listen address")
	root := fs.String("root", "", "filesystem store root (in-memory when empty)")

	_ = fs.Parse(os.Args[1:])

	var (
		backend store.Store
		err     error
	)
	if *root != "" {
		backend, err = store.NewFS(*root)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	} else {
		backend = store.NewMem()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterObjectStoreServer(s, &grpcstore.Server{Store: backend})

	fmt.Fprintf(os.Stderr, "mastvm-stored listening on %s\n", lis.Addr().String())
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
