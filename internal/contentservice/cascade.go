package contentservice

// The cascade resolver computes, up front and as pure data, the complete set
// of record edits a mutation needs to keep the back-reference arrays in step
// with the authoritative user_id/blog_id columns. The store applies the edits
// inside one transaction, so the order only matters for foreign keys:
// comments are always deleted before their blog.

type editOp int

const (
	opDeleteBlog editOp = iota
	opDeleteComment
	opPushUserBlog
	opPullUserBlog
	opPushUserComment
	opPullUserComment
	opPushBlogComment
	opPullBlogComment
)

// edit is one scheduled record edit. For splice ops, id is the value being
// appended or removed and ownerID is the row holding the array.
type edit struct {
	op      editOp
	id      int
	ownerID int
}

// resolveBlogInsert schedules the creator back-reference for a freshly
// inserted blog.
func resolveBlogInsert(blogID, creatorID int) []edit {
	return []edit{
		{op: opPushUserBlog, id: blogID, ownerID: creatorID},
	}
}

// resolveCommentInsert schedules both back-references for a freshly inserted
// comment: the parent blog's comment_ids and the author's comment_ids.
func resolveCommentInsert(commentID, blogID, creatorID int) []edit {
	return []edit{
		{op: opPushBlogComment, id: commentID, ownerID: blogID},
		{op: opPushUserComment, id: commentID, ownerID: creatorID},
	}
}

// resolveBlogDelete schedules the full cascade for a blog deletion: every
// dependent comment is removed together with its author's back-reference,
// then the blog itself and its creator's back-reference. Splices against
// users absent from liveUsers are skipped rather than treated as errors.
// comments must be a complete snapshot of the blog's comments in a
// deterministic order.
func resolveBlogDelete(blog *Blog, comments []Comment, liveUsers map[int]bool) []edit {
	edits := make([]edit, 0, 2*len(comments)+2)

	for _, c := range comments {
		if liveUsers[c.UserID] {
			edits = append(edits, edit{op: opPullUserComment, id: c.ID, ownerID: c.UserID})
		}
		edits = append(edits, edit{op: opDeleteComment, id: c.ID})
	}

	if liveUsers[blog.UserID] {
		edits = append(edits, edit{op: opPullUserBlog, id: blog.ID, ownerID: blog.UserID})
	}
	edits = append(edits, edit{op: opDeleteBlog, id: blog.ID})

	return edits
}

// resolveCommentDelete schedules a single comment deletion and the removal of
// its id from the parent blog's and the author's back-reference arrays.
func resolveCommentDelete(c *Comment, authorLive bool) []edit {
	edits := make([]edit, 0, 3)

	edits = append(edits, edit{op: opPullBlogComment, id: c.ID, ownerID: c.BlogID})
	if authorLive {
		edits = append(edits, edit{op: opPullUserComment, id: c.ID, ownerID: c.UserID})
	}
	edits = append(edits, edit{op: opDeleteComment, id: c.ID})

	return edits
}
