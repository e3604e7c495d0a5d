package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blogz/internal/auth"
	"blogz/internal/db"
	"blogz/internal/metrics"
	"blogz/internal/models"
	"blogz/web"
)

const userKey = "user"

var pages = []string{"blogs", "post", "users", "login", "register", "new_blog", "notfound", "error"}

type Handler struct {
	store    *db.Store
	sessions *auth.Manager
	hasher   *auth.Hasher
	metrics  *metrics.Metrics
	tpls     map[string]*template.Template
}

func New(store *db.Store, sessions *auth.Manager, hasher *auth.Hasher, m *metrics.Metrics) *Handler {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Local().Format("Jan 2, 2006 15:04") },
	}
	tpls := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		tpls[p] = template.Must(template.New(p).Funcs(funcs).
			ParseFS(web.Templates, "templates/base.html", "templates/"+p+".html"))
	}
	return &Handler{store: store, sessions: sessions, hasher: hasher, metrics: m, tpls: tpls}
}

// currentUser is the user the session gate resolved, or nil.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// render executes page inside the base layout. A pending flash cookie is
// consumed unless data already carries a Flash.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = auth.PopFlash(c.Writer, c.Request)
	}

	var buf bytes.Buffer
	if err := h.tpls[page].ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("[http] render %s: %v", page, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) serverError(c *gin.Context, err error) {
	log.Printf("[http] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	h.render(c, http.StatusInternalServerError, "error", gin.H{"Title": "Error"})
}

func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "notfound", gin.H{"Title": "Not Found"})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		log.Printf("[db] ping: %v", err)
		c.String(http.StatusServiceUnavailable, "unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}

// queryID parses the id query parameter. Anything but a positive integer
// is treated as a missing record.
func queryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	return id, err == nil && id > 0
}

// -------- Blog pages

func (h *Handler) Blogs(c *gin.Context) {
	h.listBlogs(c, 0, "Blogs!")
}

func (h *Handler) MyBlogs(c *gin.Context) {
	h.listBlogs(c, currentUser(c).ID, "My Blog!")
}

func (h *Handler) UserBlogs(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	u, err := h.store.UserByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		h.NotFound(c)
		return
	} else if err != nil {
		h.serverError(c, err)
		return
	}
	h.listBlogs(c, u.ID, "Posts by "+u.Username)
}

func (h *Handler) listBlogs(c *gin.Context, ownerID int64, title string) {
	blogs, err := h.store.ListBlogs(c.Request.Context(), ownerID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "blogs", gin.H{"Title": title, "Blogs": blogs})
}

func (h *Handler) Post(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	b, err := h.store.BlogByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		h.NotFound(c)
		return
	} else if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "post", gin.H{"Title": b.Name, "Blog": b})
}

func (h *Handler) Users(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "users", gin.H{"Title": "Users", "Users": users})
}

const newBlogTitle = "Post a New Blog!"

func (h *Handler) NewBlogForm(c *gin.Context) {
	h.render(c, http.StatusOK, "new_blog", gin.H{"Title": newBlogTitle, "Form": blogForm{}, "Errors": map[string]string{}})
}

func (h *Handler) NewBlog(c *gin.Context) {
	var f blogForm
	if err := bindForm(c, &f); err != nil {
		errs := fieldErrors(err)
		msg := "Please fix the errors below."
		if errs["Name"] == msgRequired || errs["Body"] == msgRequired {
			msg = "Blog name and blog body required!"
		}
		h.render(c, http.StatusBadRequest, "new_blog", gin.H{
			"Title":  newBlogTitle,
			"Form":   f,
			"Errors": errs,
			"Flash":  &auth.Flash{Kind: auth.FlashError, Message: msg},
		})
		return
	}

	b := &models.Blog{OwnerID: currentUser(c).ID, Name: f.Name, Body: f.Body}
	if err := h.store.CreateBlog(c.Request.Context(), b); err != nil {
		h.serverError(c, err)
		return
	}
	h.metrics.Posts.Inc()
	c.Redirect(http.StatusSeeOther, "/post?id="+strconv.FormatInt(b.ID, 10))
}
