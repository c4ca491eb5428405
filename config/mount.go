package config

// MountOptions holds high-level settings for the optional read-only mount.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug  bool   // fuse debug logs
	FsName string // mount's FsName
	Name   string // mount's Name
}

// StoreOptions selects and configures the key-value store holding the
// namespace snapshot. Only the fields relevant to Type are read.
type StoreOptions struct {
	Type string // Registered adapter type: "memory", "file" or "redis" (Default "file")
	Key  string // Key of the single snapshot record (Default "chatfs:snapshot")

	Dir string // Directory used by the "file" adapter (Default ".chatfs")

	RedisAddr     string // host:port of the redis server (Default "localhost:6379")
	RedisPassword string
	RedisDB       int
}
