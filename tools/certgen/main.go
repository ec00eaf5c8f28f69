// Command certgen writes a development CA and a server certificate signed by it.
//
//	go run ./tools/certgen -dir certs -hosts localhost,127.0.0.1
//
// Point the server at certs/server.crt and certs/server.key through TLS_CERT
// and TLS_KEY, and start the client with -ca certs/ca.crt.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/schemeseva/internal/certgen"
)

type options struct {
	dir    string
	hosts  string
	caCert string
	caKey  string
}

func main() {
	var o options
	flag.StringVar(&o.dir, "dir", "certs", "output directory")
	flag.StringVar(&o.hosts, "hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.StringVar(&o.caCert, "ca-cert", "", "existing CA certificate to sign with")
	flag.StringVar(&o.caKey, "ca-key", "", "existing CA key to sign with")
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(o options, out io.Writer) error {
	var hosts []string
	for _, h := range strings.Split(o.hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		return errors.New("no hosts given")
	}

	var (
		ca  *certgen.Authority
		err error
	)
	if o.caCert != "" || o.caKey != "" {
		ca, err = certgen.LoadAuthority(o.caCert, o.caKey)
		if err != nil {
			return err
		}
	} else {
		ca, err = certgen.NewAuthority("SchemeSeva Dev CA")
		if err != nil {
			return err
		}
		certPEM, keyPEM, err := ca.PEM()
		if err != nil {
			return err
		}
		if err := certgen.WritePair(o.dir, "ca", certPEM, keyPEM); err != nil {
			return err
		}
	}

	certPEM, keyPEM, err := ca.IssueServer(hosts...)
	if err != nil {
		return err
	}
	if err := certgen.WritePair(o.dir, "server", certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Fprintf(out, "Certificates for %s written to %s\n", strings.Join(hosts, ", "), filepath.Clean(o.dir))
	return nil
}
