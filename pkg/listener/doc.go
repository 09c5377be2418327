// Package listener binds the process's listening sockets (plain, secure
// and administrative) and keeps stable internal and external URIs for each
// across checkpoint/restore.
//
// # Architecture
//
// Registry is built once from a Config. For every enabled endpoint it opens
// a TCP socket with SO_REUSEADDR and the configured accept-queue depth,
// reads back the port the OS actually assigned (resolving port 0), and
// builds two URIs from it: one with the node's internal address and one
// with its external address. The administrative endpoint advertises https
// exactly when the secure endpoint is enabled, whatever its own Scheme says.
//
// Each Endpoint stores its (listener, URI, external URI) triple behind its
// own lock and replaces it as a whole, so Snapshot never mixes a new
// listener with a stale URI. Endpoints are independent of each other and
// are bound concurrently.
//
// Registry implements checkpoint.Resource and registers itself with the
// process coordinator on construction:
//
//   - BeforeCheckpoint closes every socket. URIs keep their last values;
//     readers may still report them but must not attempt I/O.
//   - AfterRestore rebinds from the original configuration. A fixed port is
//     bound again as is. A port requested as 0 is re-requested as 0 and may
//     come back different; that mirrors the OS's own ephemeral allocation
//     and is intentional.
//
// # Usage
//
//	cfg := listener.DefaultConfig()
//	cfg.Admin.Enabled = true
//
//	reg, err := listener.New(cfg, listener.WithLogger(log))
//	if err != nil {
//	    return err // errors.Is(err, listener.ErrBind)
//	}
//	defer reg.Close()
//
//	fmt.Println(reg.HTTPURI(), reg.AdminExternalURI())
//
// # Errors
//
// Bind failures are wrapped with ErrBind and are fatal: New returns no
// registry, and a failed AfterRestore leaves the endpoints unbound for the
// coordinator to deal with. Close failures during checkpoint are logged and
// returned joined, without stopping the other closes.
package listener
