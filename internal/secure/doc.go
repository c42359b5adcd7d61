// Package secure keeps resolved secret values encrypted in memory.
//
// Each value lives in a memguard enclave (XSalsa20Poly1305, mlocked where
// the platform allows) from the moment `op read` returns it until the
// child process is started. Values are decrypted only to expand command
// arguments and to build the child's environment.
//
// Go strings cannot be wiped, so plaintext copies handed to os/exec
// outlive Destroy. Call memguard.Purge at exit to scrub the enclave keys.
package secure
