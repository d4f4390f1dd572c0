package database

import (
	"bytes"
	"testing"
)

func TestBucketPath(t *testing.T) {
	tests := []struct {
		bucketByteSlices [][]byte
		expectedPath     []byte
	}{
		{
			bucketByteSlices: [][]byte{[]byte("hello")},
			expectedPath:     []byte("hello/"),
		},
		{
			bucketByteSlices: [][]byte{[]byte("hello"), []byte("world")},
			expectedPath:     []byte("hello/world/"),
		},
	}

	for _, test := range tests {
		// Build a result using the MakeBucket function alone
		resultKey := MakeBucket(test.bucketByteSlices...).Path()
		if !bytes.Equal(resultKey, test.expectedPath) {
			t.Errorf("TestBucketPath: got wrong path using MakeBucket. "+
				"Want: %s, got: %s", string(test.expectedPath), string(resultKey))
		}

		// Build a result using sub-Bucket calls
		bucket := MakeBucket()
		for _, bucketBytes := range test.bucketByteSlices {
			bucket = bucket.Bucket(bucketBytes)
		}
		resultKey = bucket.Path()
		if !bytes.Equal(resultKey, test.expectedPath) {
			t.Errorf("TestBucketPath: got wrong path using sub-Bucket "+
				"calls. Want: %s, got: %s", string(test.expectedPath), string(resultKey))
		}
	}
}

func TestBucketKey(t *testing.T) {
	key := MakeBucket([]byte("accounts")).Key([]byte("123R"))
	if !bytes.Equal(key.Bytes(), []byte("accounts/123R")) {
		t.Fatalf("TestBucketKey: got %s, want accounts/123R", key.Bytes())
	}
	if !bytes.Equal(key.Suffix(), []byte("123R")) {
		t.Fatalf("TestBucketKey: got suffix %s, want 123R", key.Suffix())
	}
}
