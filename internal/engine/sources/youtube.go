package sources

// YouTube comment downloading is split across files by responsibility:
//   youtube_innertube.go: page markers, continuation tokens, the retrying POST client
//   youtube_session.go  : session identity, watch page bootstrap, consent flow
//   youtube_comments.go : entry continuation resolution and the continuation crawl
//   youtube_record.go   : flattening raw payloads into engine.CommentRecord
//   youtube_errors.go   : error kinds surfaced to callers
