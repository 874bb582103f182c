// Package feature implements the ZFS pool-feature catalogue (§4, §6
// "Feature catalogue"): a stable enumeration of 41 on-disk feature names
// and a compact bitmap type for tracking which ones a pool has enabled.
package feature

import (
	"fmt"
	"log/slog"

	"github.com/scigolib/zfsphys/internal/utils"
)

// Feature identifies one pool feature flag. The declaration order below
// is the on-disk interface: bit position, iteration order, and the
// compatibility guarantee in §6 all derive from it, so entries are never
// reordered or renumbered, only appended to.
type Feature int

const (
	AllocationClasses Feature = iota
	AsyncDestroy
	Blake3
	BlockCloning
	BookmarkV2
	BookmarkWritten
	Bookmarks
	DeviceRebuild
	DeviceRemoval
	Draid
	Edonr
	EmbeddedData
	EmptyBlockPointerObject
	EnabledTxg
	Encryption
	ExtensibleDataset
	FilesystemLimits
	HeadErrorLog
	HoleBirth
	LargeBlocks
	LargeDnode
	LiveList
	LogSpaceMap
	Lz4Compress
	MultiVdevCrashDump
	ObsoleteCounts
	ProjectQuota
	RaidzExpansion
	RedactedDatasets
	RedactionListSpill
	RedactionBookmarks
	ResilverDefer
	Sha512
	Skein
	SpacemapHistogram
	SpacemapV2
	UserObjectAccounting
	VdevZapsV2
	ZilSaXattr
	ZpoolCheckpoint
	ZstdCompress

	featureCount
)

// All lists every Feature in enumeration order.
var All = func() []Feature {
	fs := make([]Feature, featureCount)
	for i := range fs {
		fs[i] = Feature(i)
	}
	return fs
}()

var names = [featureCount]string{
	AllocationClasses:       "org.zfsonlinux:allocation_classes",
	AsyncDestroy:            "com.delphix:async_destroy",
	Blake3:                  "org.openzfs:blake3",
	BlockCloning:            "com.fudosecurity:block_cloning",
	BookmarkV2:              "com.datto:bookmark_v2",
	BookmarkWritten:         "com.delphix:bookmark_written",
	Bookmarks:               "com.delphix:bookmarks",
	DeviceRebuild:           "org.openzfs:device_rebuild",
	DeviceRemoval:           "com.delphix:device_removal",
	Draid:                   "org.openzfs:draid",
	Edonr:                   "org.illumos:edonr",
	EmbeddedData:            "com.delphix:embedded_data",
	EmptyBlockPointerObject: "com.delphix:empty_bpobj",
	EnabledTxg:              "com.delphix:enabled_txg",
	Encryption:              "com.datto:encryption",
	ExtensibleDataset:       "com.delphix:extensible_dataset",
	FilesystemLimits:        "com.joyent:filesystem_limits",
	HeadErrorLog:            "com.delphix:head_errlog",
	HoleBirth:               "com.delphix:hole_birth",
	LargeBlocks:             "org.open-zfs:large_blocks",
	LargeDnode:              "org.zfsonlinux:large_dnode",
	LiveList:                "com.delphix:livelist",
	LogSpaceMap:             "com.delphix:log_spacemap",
	Lz4Compress:             "org.illumos:lz4_compress",
	MultiVdevCrashDump:      "com.joyent:multi_vdev_crash_dump",
	ObsoleteCounts:          "com.delphix:obsolete_counts",
	ProjectQuota:            "org.zfsonlinux:project_quota",
	RaidzExpansion:          "org.openzfs:raidz_expansion",
	RedactedDatasets:        "com.delphix:redacted_datasets",
	RedactionListSpill:      "com.delphix:redaction_list_spill",
	RedactionBookmarks:      "com.delphix:redaction_bookmarks",
	ResilverDefer:           "com.datto:resilver_defer",
	Sha512:                  "org.illumos:sha512",
	Skein:                   "org.illumos:skein",
	SpacemapHistogram:       "com.delphix:spacemap_histogram",
	SpacemapV2:              "com.delphix:spacemap_v2",
	UserObjectAccounting:    "org.zfsonlinux:userobj_accounting",
	VdevZapsV2:              "com.klarasystems:vdev_zaps_v2",
	ZilSaXattr:              "org.openzfs:zilsaxattr",
	ZpoolCheckpoint:         "com.delphix:zpool_checkpoint",
	ZstdCompress:            "org.freebsd:zstd_compress",
}

var byName map[string]Feature

func init() {
	byName = make(map[string]Feature, len(names))
	for f, n := range names {
		byName[n] = Feature(f)
	}
}

// String returns the canonical dotted on-disk name, e.g.
// "com.delphix:embedded_data".
func (f Feature) String() string {
	if f < 0 || int(f) >= len(names) {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return names[f]
}

// ParseFeature looks up a Feature by its canonical on-disk name.
func ParseFeature(name string) (Feature, error) {
	return ParseFeatureWithLogger(name, nil)
}

// ParseFeatureWithLogger is ParseFeature with diagnostic logging: logger
// (if non-nil) receives a debug record naming the rejected string whenever
// lookup fails. A pool carrying an unrecognized feature name is not
// necessarily corrupt (a newer implementation may have defined it), so
// this stays a reportable event rather than upgrading the returned error.
func ParseFeatureWithLogger(name string, logger *slog.Logger) (Feature, error) {
	f, ok := byName[name]
	if !ok {
		utils.LoggerOrDiscard(logger).Debug("feature: unknown feature name", "name", name)
		return 0, fmt.Errorf("feature: unknown feature name %q", name)
	}
	return f, nil
}
