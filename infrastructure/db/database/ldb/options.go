package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// Options is a function that returns a leveldb
// opt.Options struct for opening a database.
// It's defined as a variable for the sake of testing.
var Options = func(cacheSizeMiB int) *opt.Options {
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     cacheSizeMiB * opt.MiB,
		WriteBuffer:            (cacheSizeMiB / 2) * opt.MiB,
		DisableSeeksCompaction: true,
	}
}
